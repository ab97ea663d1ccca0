package httpapi

// Result is the response envelope every JSON endpoint returns.
// - code: ResultSuccess, or the HTTP status for failures
// - type: 'success' | 'error'
type Result[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

const (
	ResultSuccess = 2000
	ResultError   = -1
)

func Ok[T any](result T) Result[T] {
	return Result[T]{Code: ResultSuccess, Type: "success", Message: "ok", Result: result}
}

func Fail(message string) Result[any] {
	return Result[any]{Code: ResultError, Type: "error", Message: message, Result: nil}
}

// FailStatus carries the HTTP status in code so clients that only read the body can branch on it.
func FailStatus(status int, message string) Result[any] {
	return Result[any]{Code: status, Type: "error", Message: message, Result: nil}
}

// Page wraps list results.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func NewPage[T any](items []T) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: len(items)}
}
