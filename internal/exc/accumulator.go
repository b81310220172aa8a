// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package exc

import "sync"

// Reporter accumulates the diagnostics of one parse. Whether a report stops
// the parse depends on its code: codes in the non-fatal set are recorded and
// parsing continues. A recovering parser keeps going after fatal reports too
// and consults Failed at the end.
type Reporter interface {
	// Report adds the given record to the set. If this method returns an error
	// then the given error is considered fatal.
	Report(Exception) Exception
	// Reported returns the set of accumulated exceptions.
	Reported() []Exception
	// Failed reports whether any accumulated exception was fatal.
	Failed() bool
}

// NewReporter returns a concurrent-safe implementation of Reporter.
func NewReporter(nonFatal []string) Reporter {
	nf := make(map[string]bool, len(defaultNonFatal))
	for k := range defaultNonFatal {
		nf[k] = true
	}
	for _, k := range nonFatal {
		nf[k] = true
	}
	return &reporterLock{
		Reporter: &reporter{
			nonFatal: nf,
		},
		lock: &sync.Mutex{},
	}
}

type reporter struct {
	reported []Exception
	nonFatal map[string]bool
	failed   bool
}

func (r *reporter) Report(e Exception) Exception {
	r.reported = append(r.reported, e)
	if r.nonFatal[e.Code()] || e.Severity() == SeverityWarning {
		return nil
	}
	r.failed = true
	return e
}

func (r *reporter) Failed() bool {
	return r.failed
}

func (r *reporter) Reported() []Exception {
	return r.reported
}

type reporterLock struct {
	Reporter
	lock sync.Locker
}

func (r *reporterLock) Report(e Exception) Exception {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.Reporter.Report(e)
}

func (r *reporterLock) Reported() []Exception {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]Exception(nil), r.Reporter.Reported()...)
}

func (r *reporterLock) Failed() bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.Reporter.Failed()
}

// Errors filters the given exceptions down to those with error severity.
func Errors(es []Exception) []Exception {
	out := make([]Exception, 0, len(es))
	for _, e := range es {
		if e.Severity() == SeverityError {
			out = append(out, e)
		}
	}
	return out
}
