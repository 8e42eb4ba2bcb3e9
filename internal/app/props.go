package app

import (
	"fmt"

	"github.com/ledgerdash/ledgerdash/pkg/router"
)

// AccountDetailProps are the inputs of the AccountDetail view.
type AccountDetailProps struct {
	ID int64 `param:"id" json:"id"`
}

// Props decodes the props of a match into the view's typed inputs. It
// returns nil for routes that do not forward params, and the raw props for
// views without a typed struct.
func Props(match router.Match) (any, error) {
	if match.Props == nil {
		return nil, nil
	}

	var props any
	switch match.View {
	case ViewAccountDetail:
		props = &AccountDetailProps{}
	default:
		return match.Props, nil
	}

	if err := router.DecodeParams(match.Props, props); err != nil {
		return nil, fmt.Errorf("%s props: %w", match.Name, err)
	}
	return props, nil
}
