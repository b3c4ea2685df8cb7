package services

import (
  "errors"
  "fmt"
)

// NotFoundError reports a missing domain resource, distinct from provider
// failures so handlers can map it to a 404.
type NotFoundError struct {
  Resource string
  Detail   string
}

func (e *NotFoundError) Error() string {
  if e.Detail != "" {
    return fmt.Sprintf("%s not found: %s", e.Resource, e.Detail)
  }
  return fmt.Sprintf("%s not found", e.Resource)
}

func NewNotFoundError(resource, detail string) *NotFoundError {
  return &NotFoundError{Resource: resource, Detail: detail}
}

func IsNotFound(err error) bool {
  var nf *NotFoundError
  return errors.As(err, &nf)
}

// ProviderError wraps a failure from an external dependency (model API,
// speech, POS). The underlying error is preserved for logging but the
// provider name is what surfaces to clients.
type ProviderError struct {
  Provider string
  Err      error
}

func (e *ProviderError) Error() string {
  return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
  return e.Err
}

func NewProviderError(provider string, err error) *ProviderError {
  return &ProviderError{Provider: provider, Err: err}
}

func IsProviderError(err error) bool {
  var pe *ProviderError
  return errors.As(err, &pe)
}

// EmptyInputError reports input that is blank after normalization.
type EmptyInputError struct {
  Field string
}

func (e *EmptyInputError) Error() string {
  return fmt.Sprintf("%s must not be empty", e.Field)
}

func NewEmptyInputError(field string) *EmptyInputError {
  return &EmptyInputError{Field: field}
}

func IsEmptyInput(err error) bool {
  var ee *EmptyInputError
  return errors.As(err, &ee)
}
