package vectorutils

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/secondbrainhq/secondbrain/pkg/vector"
	"github.com/secondbrainhq/secondbrain/pkg/vector/chroma"
	"github.com/secondbrainhq/secondbrain/pkg/vector/sqlitevec"
)

type NewVectorDriverOpts struct {
	ProviderType string
	TargetURL    string
	SQLitePath   string
	Dimensions   uint
	Logger       *zap.Logger
}

func NewVectorDriver(o *NewVectorDriverOpts) (vector.Driver, error) {
	switch o.ProviderType {
	case "chroma":
		return chroma.NewChromaDriver(chroma.Config{
			URL: o.TargetURL,
		}, o.Logger)
	case "sqlite":
		return sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
			DBPath:     o.SQLitePath,
			Dimensions: o.Dimensions,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}
