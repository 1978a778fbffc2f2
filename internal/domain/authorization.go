package domain

// FailureKind identifies which requirement produced a failure reason.
type FailureKind string

const (
	FailureSecretHeaderMismatch FailureKind = "secret_header_mismatch"
	FailureUnderage             FailureKind = "underage"
	FailureGeneric              FailureKind = "generic"
)

type FailureReason struct {
	Kind    FailureKind
	Message string
}

// AuthorizationOutcome is produced once per request by a policy evaluator.
type AuthorizationOutcome struct {
	Succeeded      bool
	FailureReasons []FailureReason
}

func Succeeded() AuthorizationOutcome {
	return AuthorizationOutcome{Succeeded: true}
}

func Failed(reasons ...FailureReason) AuthorizationOutcome {
	out := make([]FailureReason, len(reasons))
	copy(out, reasons)
	return AuthorizationOutcome{FailureReasons: out}
}

// FirstReason returns the reason transformers dispatch on.
func (o AuthorizationOutcome) FirstReason() (FailureReason, bool) {
	if o.Succeeded || len(o.FailureReasons) == 0 {
		return FailureReason{}, false
	}
	return o.FailureReasons[0], true
}
