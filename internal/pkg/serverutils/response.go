package serverutils

// ApiResponse is the envelope every JSON endpoint returns.
type ApiResponse[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

type ApiError struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	// ErrorCode is the machine-readable taxonomy value, empty when the
	// failure has no specific code.
	ErrorCode string `json:"error_code,omitempty"`
}

func SuccessResponse[T any](message string, data T) ApiResponse[T] {
	return ApiResponse[T]{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) ApiError {
	return ApiError{
		Success: false,
		Code:    code,
		Message: message,
	}
}

func ErrorResponseWithCode(code int, message, errorCode string) ApiError {
	return ApiError{
		Success:   false,
		Code:      code,
		Message:   message,
		ErrorCode: errorCode,
	}
}
