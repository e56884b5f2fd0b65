package errors

import "net/http"

var (
	ErrLotNotFound = New(
		"LOT_NOT_FOUND",
		"Parking lot not found",
		http.StatusNotFound,
	)

	ErrSectorNotFound = New(
		"SECTOR_NOT_FOUND",
		"Sector not found",
		http.StatusNotFound,
	)

	ErrImageNotFound = New(
		"IMAGE_NOT_FOUND",
		"Image not found",
		http.StatusNotFound,
	)

	ErrNoImage = New(
		"NO_IMAGE",
		"Sector has no captured images",
		http.StatusConflict,
	)

	ErrDuplicate = New(
		"DUPLICATE",
		"Record already exists",
		http.StatusConflict,
	)

	ErrDetectionFailed = New(
		"DETECTION_FAILED",
		"Object detection failed",
		http.StatusBadGateway,
	)

	ErrInvalidID = New(
		"INVALID_ID",
		"Invalid identifier",
		http.StatusBadRequest,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
