package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bwmarrin/snowflake"
)

// FileLogoProvider reads tenant logos from disk, one file per org.
type FileLogoProvider struct {
	dir string
}

func NewFileLogoProvider(dir string) *FileLogoProvider {
	return &FileLogoProvider{dir: dir}
}

func (p *FileLogoProvider) Logo(ctx context.Context, orgID snowflake.ID) ([]byte, error) {
	_ = ctx
	path := filepath.Join(p.dir, fmt.Sprintf("logo_%s.png", orgID.String()))
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return content, nil
}
