package recipe

import "fmt"

// SchemaError reports that the provider returned a structurally unusable
// recipe: valid JSON could not be parsed, or required fields were absent.
// It is not retried by the Generator; callers decide the retry policy.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("generated recipe is unusable: %s", e.Reason)
}

// DuplicateError reports that a candidate title was judged too similar to
// an existing recipe. The scheduler retries these with a fresh idea; the
// admin preview surfaces them to the operator.
type DuplicateError struct {
	Title string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("recipe title %q is too similar to an existing recipe", e.Title)
}
