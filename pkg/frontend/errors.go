package frontend

import "fmt"

// UnavailableError reports that the analysis front end could not be located
// or started at all. It carries remediation guidance for the editor side.
type UnavailableError struct {
	Frontend string
	Err      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf(
		"Failed to locate the analysis front end %q. Ensure it is installed and on PATH, "+
			"or point --frontend at the executable. Details: %v",
		e.Frontend, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// AnalysisError reports that the front end started but failed to produce a
// usable program model. Trace carries the front end's diagnostic output.
type AnalysisError struct {
	Message string
	Trace   string
}

func (e *AnalysisError) Error() string { return e.Message }
