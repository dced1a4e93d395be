package errors

const (
	InvalidPGIDError        = "Invalid PG ID format"
	PGNotFoundError         = "PG not found"
	DatabaseConnError       = "Database connection failed"
	DatabaseError           = "Database error"
	InternalServerError     = "Something went wrong"
	InvalidRequestFormat    = "Invalid request format"
	ValidationError         = "Fields aren't valid"
	ImageNotFoundError      = "Image not found"
	ImageTooLargeError      = "Image exceeds the allowed size"
	MissingImageFileError   = "Missing image file"
	UnauthenticatedError    = "Unauthenticated"
	ForbiddenError          = "Forbidden"
	FetchPGFailedError      = "Failed to load PG details. Please try again later."
	ImmutableFieldError     = "Field cannot be modified"
	NoPGUpdatedError        = "No PG updated"
	NoPGDeletedError        = "No PG deleted"
	CacheUnavailableError   = "Cache unavailable"
	ReviewValidationError   = "Review fields aren't valid"
	InvalidOwnerIDError     = "Invalid owner ID"
	StorageUnreachableError = "File storage unreachable"
)
