package templates

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ledongthuc/pdf"

	"dealdocs-backend/internal/shared/telemetry"
)

// NewRegistryWithAssets builds the registry after verifying each implemented
// template's base PDF asset under assetDir. A template whose asset is missing,
// unparsable, or has the wrong page count is demoted to Implemented=false so
// the catalog stays readable while one defective third-party form is fixed by
// an operator. Verification happens before construction; the registry itself
// stays immutable.
func NewRegistryWithAssets(assetDir string) (*Registry, error) {
	defs := make([]TemplateDefinition, len(catalog))
	copy(defs, catalog)

	for i, def := range defs {
		if !def.Implemented {
			continue
		}
		if err := verifyAsset(assetDir, def); err != nil {
			telemetry.Warn("template.asset_check_failed", map[string]any{
				"template_code": def.Code,
				"source_file":   def.SourceFile,
				"error":         err.Error(),
			})
			defs[i].Implemented = false
		}
	}

	return newRegistry(defs, schemas)
}

func verifyAsset(assetDir string, def TemplateDefinition) error {
	data, err := os.ReadFile(filepath.Join(assetDir, def.SourceFile))
	if err != nil {
		return fmt.Errorf("read asset: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("parse asset: %w", err)
	}
	if got := reader.NumPage(); got != def.PageCount {
		return fmt.Errorf("page count mismatch: declared %d, asset has %d", def.PageCount, got)
	}
	return nil
}
