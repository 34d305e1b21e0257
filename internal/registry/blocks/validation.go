package blocks

import (
	"fmt"
	"strings"

	"github.com/griha-erp/griha-erp/internal/platform/httpx"
)

func (s *Service) validate(b Block) error {
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("%w: block name is required", httpx.ErrValidation)
	}
	prefix := strings.TrimSpace(b.Prefix)
	if prefix == "" {
		return fmt.Errorf("%w: block prefix is required", httpx.ErrValidation)
	}
	if strings.Contains(prefix, "-") {
		return fmt.Errorf("%w: block prefix must not contain a dash", httpx.ErrValidation)
	}
	return nil
}
