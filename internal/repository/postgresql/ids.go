package postgresql

import "github.com/google/uuid"

// isUUID reports whether id can be compared against a UUID column. Lookups
// with anything else are answered as not found without a round trip.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func filterUUIDs(ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if isUUID(id) {
			valid = append(valid, id)
		}
	}
	return valid
}
