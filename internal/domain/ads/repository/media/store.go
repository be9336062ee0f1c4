package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Aztech-1729/sliptads/internal/domain"
	adserrors "github.com/Aztech-1729/sliptads/internal/domain/ads/errors"
)

const s3Scheme = "s3://"

// ObjectFetcher reads objects from the media bucket
type ObjectFetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// Store loads custom media from local disk or object storage
type Store struct {
	objects ObjectFetcher
	logger  zerolog.Logger
}

// NewStore creates a media store. objects may be nil when S3 is disabled.
func NewStore(objects ObjectFetcher, logger zerolog.Logger) *Store {
	return &Store{
		objects: objects,
		logger:  logger.With().Str("component", "media_store").Logger(),
	}
}

// Load reads the file at p
func (s *Store) Load(ctx context.Context, p string, kind domain.MediaKind) (domain.MediaFile, error) {
	if kind == "" {
		kind = domain.MediaDocument
	}

	if key, ok := strings.CutPrefix(p, s3Scheme); ok {
		return s.loadObject(ctx, key, kind)
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.MediaFile{}, fmt.Errorf("%w: %s", adserrors.ErrMediaNotFound, p)
		}
		return domain.MediaFile{}, fmt.Errorf("failed to read media %s: %w", p, err)
	}

	return domain.MediaFile{Name: filepath.Base(p), Kind: kind, Data: data}, nil
}

func (s *Store) loadObject(ctx context.Context, key string, kind domain.MediaKind) (domain.MediaFile, error) {
	if s.objects == nil {
		return domain.MediaFile{}, adserrors.ErrMediaUnavailable
	}
	if key == "" {
		return domain.MediaFile{}, adserrors.ErrMediaNotFound
	}

	data, err := s.objects.Fetch(ctx, key)
	if err != nil {
		return domain.MediaFile{}, err
	}

	s.logger.Debug().Str("key", key).Int("size", len(data)).Msg("Loaded media from object storage")
	return domain.MediaFile{Name: path.Base(key), Kind: kind, Data: data}, nil
}
