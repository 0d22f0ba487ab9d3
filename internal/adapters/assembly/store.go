// Package assembly persists synthesized templates and the assembly manifest in a blob bucket.
package assembly

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/cicd/internal/core/domain"
	"go.trai.ch/zerr"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// Store implements ports.AssemblyStore on top of a gocloud bucket.
type Store struct {
	bucket *blob.Bucket
	now    func() time.Time

	// mu serializes manifest read-modify-write cycles between concurrent Puts.
	mu sync.Mutex
}

// NewStore creates a Store writing to the given bucket. The store owns the bucket.
func NewStore(bucket *blob.Bucket) *Store {
	return &Store{
		bucket: bucket,
		now:    time.Now,
	}
}

// Get retrieves the manifest entry for the given artifact ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.SynthInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	manifest, err := s.readManifest(ctx)
	if err != nil {
		return nil, err
	}
	info, ok := manifest.Artifacts[id]
	if !ok {
		return nil, nil
	}
	return &info, nil
}

// Put writes the template and records it in the manifest.
// The write is skipped when the manifest already records the same content hash and the
// template file is still present.
func (s *Store) Put(ctx context.Context, artifact *domain.StackArtifact) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	manifest, err := s.readManifest(ctx)
	if err != nil {
		return false, err
	}

	id := artifact.ID()
	file := artifact.TemplateFile()
	hash := Hash(artifact.Body)

	if prev, ok := manifest.Artifacts[id]; ok && prev.TemplateHash == hash && prev.TemplateFile == file {
		exists, err := s.bucket.Exists(ctx, file)
		if err != nil {
			return false, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "key", file)
		}
		if exists {
			return false, nil
		}
	}

	if err := s.bucket.WriteAll(ctx, file, artifact.Body, &blob.WriterOptions{
		ContentType: contentType(artifact.Format),
	}); err != nil {
		return false, zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "key", file)
	}

	manifest.Artifacts[id] = domain.SynthInfo{
		StackName:    artifact.StackName,
		StageName:    artifact.StageName,
		TemplateFile: file,
		TemplateHash: hash,
		Account:      artifact.Env.Account,
		Region:       artifact.Env.Region,
		Timestamp:    s.now().UTC(),
	}
	if err := s.writeManifest(ctx, manifest); err != nil {
		return false, err
	}
	return true, nil
}

// Close releases the underlying bucket.
func (s *Store) Close() error {
	return s.bucket.Close()
}

func (s *Store) readManifest(ctx context.Context) (*domain.Manifest, error) {
	data, err := s.bucket.ReadAll(ctx, domain.ManifestFileName)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return domain.NewManifest(), nil
		}
		return nil, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}

	manifest := domain.NewManifest()
	if err := json.Unmarshal(data, manifest); err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error())
	}
	if manifest.Artifacts == nil {
		manifest.Artifacts = make(map[string]domain.SynthInfo)
	}
	return manifest, nil
}

func (s *Store) writeManifest(ctx context.Context, manifest *domain.Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}
	if err := s.bucket.WriteAll(ctx, domain.ManifestFileName, data, &blob.WriterOptions{
		ContentType: "application/json",
	}); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "key", domain.ManifestFileName)
	}
	return nil
}

// Hash returns the content hash recorded in the manifest for a template body.
func Hash(body []byte) string {
	return strconv.FormatUint(xxhash.Sum64(body), 16)
}

func contentType(format string) string {
	if format == "yaml" {
		return "application/yaml"
	}
	return "application/json"
}
