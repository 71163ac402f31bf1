package answering

import "time"

// Policy encapsulates the tier deadlines and acceptance thresholds driving
// the answer-discovery schedule. The generated-tier deadline is measured
// from the start of the monitoring phase, not from question detection.
type Policy struct {
	DocumentTimeout  time.Duration
	MeetingTimeout   time.Duration
	MonitorTimeout   time.Duration
	GeneratedTimeout time.Duration

	DocumentThreshold  float64
	MeetingThreshold   float64
	MonitorThreshold   float64
	GeneratedThreshold float64
}

// DefaultPolicy returns the production schedule.
func DefaultPolicy() Policy {
	return Policy{
		DocumentTimeout:  2 * time.Second,
		MeetingTimeout:   1500 * time.Millisecond,
		MonitorTimeout:   15 * time.Second,
		GeneratedTimeout: 3 * time.Second,

		DocumentThreshold:  0.60,
		MeetingThreshold:   0.60,
		MonitorThreshold:   0.65,
		GeneratedThreshold: 0.70,
	}
}

// Threshold returns the acceptance threshold for a tier source.
func (p Policy) Threshold(s Source) float64 {
	switch s {
	case SourceDocumentSearch:
		return p.DocumentThreshold
	case SourceMeetingContext:
		return p.MeetingThreshold
	case SourceLiveMonitoring:
		return p.MonitorThreshold
	case SourceGeneratedFallback:
		return p.GeneratedThreshold
	default:
		return 1.0 // unknown source never passes
	}
}

// SearchWindow is the upper bound of the SEARCHING phase.
func (p Policy) SearchWindow() time.Duration {
	if p.DocumentTimeout > p.MeetingTimeout {
		return p.DocumentTimeout
	}
	return p.MeetingTimeout
}

// MonitorWindow is the upper bound of the MONITORING phase.
func (p Policy) MonitorWindow() time.Duration {
	if p.MonitorTimeout > p.GeneratedTimeout {
		return p.MonitorTimeout
	}
	return p.GeneratedTimeout
}

// GlobalDeadline is the overall time budget for one question.
func (p Policy) GlobalDeadline() time.Duration {
	return p.SearchWindow() + p.MonitorWindow()
}
