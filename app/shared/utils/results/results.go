package results

// OperationResult carries either a domain success or a domain failure through a
// service operation. Infrastructure errors travel separately as Go errors; a
// failure here is an expected business outcome (not found, validation, ...).
type OperationResult[S any, F any] struct {
	Success *S
	Failure *F
}

// SuccessResult wraps a success value.
func SuccessResult[S any, F any](value S) OperationResult[S, F] {
	return OperationResult[S, F]{Success: &value}
}

// FailureResult wraps a failure value.
func FailureResult[S any, F any](value F) OperationResult[S, F] {
	return OperationResult[S, F]{Failure: &value}
}

// IsSuccess reports whether the result holds a success value.
func (r OperationResult[S, F]) IsSuccess() bool { return r.Success != nil }

// IsFailure reports whether the result holds a failure value.
func (r OperationResult[S, F]) IsFailure() bool { return r.Failure != nil }
