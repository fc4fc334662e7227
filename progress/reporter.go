// Package progress exposes the two counters a pipeline pass reports
// against: items fetched and thumbnails downloaded.
package progress

// Counter is a single progress line. Implementations must be safe for
// concurrent use; download counters are advanced from task goroutines.
type Counter interface {
	// SetTotal sets or refreshes the upper bound.
	SetTotal(total int)
	// Inc advances the counter by one.
	Inc()
	// Finish marks the counter complete with a final message.
	Finish(message string)
}

// Reporter hands out the fetch and download counters for one pass.
type Reporter interface {
	Fetch() Counter
	Download() Counter
	// Close releases any resources held by the reporter.
	Close()
}

// Factory builds a Reporter for the named list (e.g. "liked/saved songs").
type Factory func(listName string) Reporter

// Nop returns a Reporter that discards everything.
func Nop() Reporter { return nopReporter{} }

// NopFactory is a Factory returning Nop reporters.
func NopFactory(string) Reporter { return nopReporter{} }

type nopReporter struct{}

func (nopReporter) Fetch() Counter    { return nopCounter{} }
func (nopReporter) Download() Counter { return nopCounter{} }
func (nopReporter) Close()            {}

type nopCounter struct{}

func (nopCounter) SetTotal(int)  {}
func (nopCounter) Inc()          {}
func (nopCounter) Finish(string) {}
