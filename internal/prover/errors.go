package prover

import "strings"

// ServiceError categorizes failures that are not statement rejections.
// Statement rejections are returned as *statement.Rejection.
type ServiceError string

const (
	// ErrUnknownStatement indicates an unrecognized statement name.
	ErrUnknownStatement ServiceError = "unknown_statement"

	// ErrInvalidParams indicates request parameters that do not decode into
	// the statement's witness and claim.
	ErrInvalidParams ServiceError = "invalid_params"

	// ErrProvingDisabled indicates a proof request while the circuit is not
	// compiled.
	ErrProvingDisabled ServiceError = "proving_disabled"

	// ErrProvingUnsupported indicates a proof request for a statement that
	// has no circuit.
	ErrProvingUnsupported ServiceError = "proving_unsupported"

	// ErrProofTimeout indicates the request deadline passed while waiting
	// for a worker or a proof.
	ErrProofTimeout ServiceError = "proof_timeout"

	// ErrProofGenerationFailed indicates an internal proving failure.
	ErrProofGenerationFailed ServiceError = "proof_generation_failed"

	// ErrProofVerificationFailed indicates a proof that does not verify.
	ErrProofVerificationFailed ServiceError = "proof_verification_failed"
)

// Error implements the error interface.
func (e ServiceError) Error() string {
	return string(e)
}

var serviceErrors = []ServiceError{
	ErrUnknownStatement,
	ErrInvalidParams,
	ErrProvingDisabled,
	ErrProvingUnsupported,
	ErrProofTimeout,
	ErrProofGenerationFailed,
	ErrProofVerificationFailed,
}

// ParseServiceError recovers the ServiceError that prefixes msg.
func ParseServiceError(msg string) (ServiceError, bool) {
	for _, e := range serviceErrors {
		if strings.HasPrefix(msg, string(e)) {
			return e, true
		}
	}
	return "", false
}
