package errors

import "strings"

// ErrorCode is a string identifier for a specific error condition.  Codes are
// grouped by module prefix so that logs can be filtered per subsystem.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	CodeOK           ErrorCode = "OK"
	CodeUnknown      ErrorCode = "COMMON_000"
	CodeInternal     ErrorCode = "COMMON_001"
	CodeInvalidParam ErrorCode = "COMMON_002"
	CodeValidation   ErrorCode = "COMMON_003"
	CodeNotFound     ErrorCode = "COMMON_004"
)

// Molecule module error codes.
const (
	CodeInvalidSMILES   ErrorCode = "MOL_001"
	CodeEmptyMolecule   ErrorCode = "MOL_002"
	CodeAtomOutOfRange  ErrorCode = "MOL_003"
	CodeTypingFailed    ErrorCode = "MOL_004"
)

// Fingerprint module error codes.
const (
	CodeFingerprintDim    ErrorCode = "FP_001"
	CodeFingerprintBatch  ErrorCode = "FP_002"
	CodeAllInputsSkipped  ErrorCode = "FP_003"
)

// Similarity module error codes.
const (
	CodeUnsupportedMetric ErrorCode = "SIM_001"
	CodeDimensionMismatch ErrorCode = "SIM_002"
	CodeIndexBuildFailed  ErrorCode = "SIM_003"
)

// Split / dataset module error codes.
const (
	CodeFractionSum     ErrorCode = "SPLIT_001"
	CodeTargetOutOfRange ErrorCode = "SPLIT_002"
	CodeEmptyClass      ErrorCode = "SPLIT_003"
	CodeRowMisaligned   ErrorCode = "SPLIT_004"
)

// Bias estimator error codes.
const (
	CodeEmptyGroup     ErrorCode = "BIAS_001"
	CodeQuartetInvalid ErrorCode = "BIAS_002"
)

// Storage / IO error codes.
const (
	CodeMatrixIO      ErrorCode = "IO_001"
	CodeCorruptMatrix ErrorCode = "IO_002"
	CodeCSVParse      ErrorCode = "IO_003"
)

// errorCodeMessage maps codes to default human-readable messages.
var errorCodeMessage = map[ErrorCode]string{
	CodeInternal:     "internal error",
	CodeInvalidParam: "invalid parameter",
	CodeValidation:   "validation failed",
	CodeNotFound:     "not found",

	CodeInvalidSMILES:  "invalid SMILES string",
	CodeEmptyMolecule:  "molecule has no atoms",
	CodeAtomOutOfRange: "atom index out of range",
	CodeTypingFailed:   "pharmacophore typing failed",

	CodeFingerprintDim:   "unexpected fingerprint dimension",
	CodeFingerprintBatch: "fingerprint batch failed",
	CodeAllInputsSkipped: "every input molecule failed to parse",

	CodeUnsupportedMetric: "unsupported distance metric",
	CodeDimensionMismatch: "vector dimensions do not match",
	CodeIndexBuildFailed:  "approximate index build failed",

	CodeFractionSum:      "test and train fractions must sum to at most 1",
	CodeTargetOutOfRange: "target column index out of range",
	CodeEmptyClass:       "row mask collapsed a class to empty",
	CodeRowMisaligned:    "feature and label matrices have different row counts",

	CodeEmptyGroup:     "distance quartet contains an empty group",
	CodeQuartetInvalid: "distance quartet is inconsistent",

	CodeMatrixIO:      "matrix read/write failed",
	CodeCorruptMatrix: "matrix file is corrupt",
	CodeCSVParse:      "failed to parse CSV input",
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := errorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// ModuleForCode returns the module prefix of an ErrorCode ("MOL", "SIM", ...).
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
