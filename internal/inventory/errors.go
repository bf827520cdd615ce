package inventory

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/DTBbuilds/SmartDuka-sub000/pkg/errors"
)

// IssueKind tags a StockIssue with the reason the line cannot be fulfilled.
type IssueKind string

const (
	IssueProductNotFound      IssueKind = "product_not_found"
	IssueOutOfStock           IssueKind = "out_of_stock"
	IssueInsufficientQuantity IssueKind = "insufficient_quantity"
	IssueInvalidQuantity      IssueKind = "invalid_quantity"
)

// StockIssue describes one line that failed a stock check.
type StockIssue struct {
	Kind      IssueKind `json:"kind"`
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name,omitempty"`
	Available int       `json:"available"`
	Requested int       `json:"requested"`
	Message   string    `json:"message"`
}

func newIssue(kind IssueKind, productID uuid.UUID, name string, available, requested int) StockIssue {
	issue := StockIssue{
		Kind:      kind,
		ProductID: productID,
		Name:      name,
		Available: available,
		Requested: requested,
	}
	issue.Message = issue.describe()
	return issue
}

func (i StockIssue) label() string {
	if i.Name != "" {
		return i.Name
	}
	return i.ProductID.String()
}

func (i StockIssue) describe() string {
	switch i.Kind {
	case IssueProductNotFound:
		return fmt.Sprintf("product %s not found", i.label())
	case IssueOutOfStock:
		return fmt.Sprintf("%s is out of stock", i.label())
	case IssueInsufficientQuantity:
		return fmt.Sprintf("only %d of %s available, %d requested", i.Available, i.label(), i.Requested)
	case IssueInvalidQuantity:
		return fmt.Sprintf("invalid quantity %d for %s", i.Requested, i.label())
	default:
		return fmt.Sprintf("%s: %s", i.Kind, i.label())
	}
}

// StockValidationError aggregates every failing line of a stock check.
type StockValidationError struct {
	Issues []StockIssue
}

func (e *StockValidationError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.Message
	}
	return "stock validation failed: " + strings.Join(msgs, "; ")
}

// Has reports whether any issue carries kind.
func (e *StockValidationError) Has(kind IssueKind) bool {
	for _, issue := range e.Issues {
		if issue.Kind == kind {
			return true
		}
	}
	return false
}

// AsAppError maps the validation failure to INSUFFICIENT_STOCK with the issues as details.
func (e *StockValidationError) AsAppError() error {
	return pkgerrors.Wrap(pkgerrors.CodeOutOfStock, e, "insufficient stock").WithDetails(e.Issues)
}
