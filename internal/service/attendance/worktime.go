package attendance

import (
	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
)

// ComputeWorkMinutes sums (IN, OUT) pairs taken at indexes (2i, 2i+1). A
// trailing unmatched punch is left out of the total.
func ComputeWorkMinutes(punches []attendance.Punch) float64 {
	var total float64
	for i := 0; i+1 < len(punches); i += 2 {
		in, out := punches[i], punches[i+1]
		total += float64(out.Time.Sub(in.Time).Milliseconds()) / 60000
	}
	return total
}

// HasMissedPunch reports an odd punch count, or any break in the
// IN, OUT, IN, ... sequence.
func HasMissedPunch(punches []attendance.Punch) bool {
	if len(punches)%2 == 1 {
		return true
	}
	for i, p := range punches {
		want := attendance.PunchIn
		if i%2 == 1 {
			want = attendance.PunchOut
		}
		if p.Type != want {
			return true
		}
	}
	return false
}

func applyPunches(rec *attendance.AttendanceRecord, punches []attendance.Punch) {
	rec.Punches = punches
	rec.TotalWorkMinutes = ComputeWorkMinutes(punches)
	rec.HasMissedPunch = HasMissedPunch(punches)
}
