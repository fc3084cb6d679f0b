package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeMissingParameter     ErrorCode = 102
	ErrCodeInvalidHorizon       ErrorCode = 103
	ErrCodeInvalidThreshold     ErrorCode = 104
	ErrCodeInvalidTestFraction  ErrorCode = 105

	// Data errors (200-299)
	ErrCodeDatasetNotFound    ErrorCode = 200
	ErrCodeDatasetParseFailed ErrorCode = 201
	ErrCodeQueryFailed        ErrorCode = 202
	ErrCodeInsufficientData   ErrorCode = 203
	ErrCodeUnsupportedFormat  ErrorCode = 204
	ErrCodeEmptyDataset       ErrorCode = 205

	// Feature errors (300-399)
	ErrCodeFeatureComputation ErrorCode = 300
	ErrCodeFeatureNotFound    ErrorCode = 301
	ErrCodeFeatureDimension   ErrorCode = 302

	// Model errors (400-499)
	ErrCodeModelNotFitted     ErrorCode = 400
	ErrCodeModelFitFailed     ErrorCode = 401
	ErrCodeDimensionMismatch  ErrorCode = 402
	ErrCodeScalerNotFitted    ErrorCode = 403
	ErrCodeDegenerateLabels   ErrorCode = 404

	// Bundle errors (500-599)
	ErrCodeBundleNotFound     ErrorCode = 500
	ErrCodeBundleCorrupt      ErrorCode = 501
	ErrCodeBundleIncompatible ErrorCode = 502
	ErrCodeBundleWriteFailed  ErrorCode = 503

	// Prediction errors (600-699)
	ErrCodePredictionFailed ErrorCode = 600
)
