package domain

import "fmt"

// ValidationError reports invalid caller input on a specific field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports a lookup that matched no entity.
type NotFoundError struct {
	Entity EntityType
	Key    string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

// DuplicateItemError reports an active list item with the same canonical name.
// Callers may bypass it by allowing duplicates explicitly.
type DuplicateItemError struct {
	Name       string
	ExistingID string
}

func (e DuplicateItemError) Error() string {
	return fmt.Sprintf("item %q already on the list (id %s)", e.Name, e.ExistingID)
}
