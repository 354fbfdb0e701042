package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/honeycarbs/jobboard-client/internal/domain"
	"github.com/honeycarbs/jobboard-client/pkg/logging"
)

// FileStore manages the CV kept on the candidate's profile
type FileStore interface {
	CVInfo(ctx context.Context) (domain.CVInfo, error)
	UploadCV(ctx context.Context, fileName string, content []byte) error
	DeleteCV(ctx context.Context) error
	DownloadCV(ctx context.Context) ([]byte, error)
}

// CVService keeps the profile CV and the readiness machine's view of it in step
type CVService struct {
	store     FileStore
	readiness *Readiness
	policy    Policy
	logger    *logging.Logger
}

func NewCVService(store FileStore, readiness *Readiness, policy Policy, logger *logging.Logger) *CVService {
	return &CVService{
		store:     store,
		readiness: readiness,
		policy:    policy,
		logger:    logging.OrNop(logger).Named("cv"),
	}
}

// Info fetches the CV on file and records it on the readiness machine
func (s *CVService) Info(ctx context.Context) (domain.CVInfo, error) {
	info, err := s.store.CVInfo(ctx)
	if err != nil {
		return domain.CVInfo{}, fmt.Errorf("cv: info: %w", err)
	}
	if s.readiness != nil {
		s.readiness.SetCVOnFile(info.HasCV, info.FileName)
	}
	return info, nil
}

// Upload replaces the CV on file after the upload policy accepts it
func (s *CVService) Upload(ctx context.Context, fileName string, content []byte) (domain.CVInfo, error) {
	if err := s.policy.Check(fileName, content); err != nil {
		return domain.CVInfo{}, err
	}
	if err := s.store.UploadCV(ctx, fileName, content); err != nil {
		return domain.CVInfo{}, fmt.Errorf("cv: upload: %w", err)
	}
	s.logger.Info("cv uploaded", "file_name", fileName, "size", len(content))
	return s.Info(ctx)
}

// Delete removes the CV on file
func (s *CVService) Delete(ctx context.Context) error {
	if err := s.store.DeleteCV(ctx); err != nil {
		return fmt.Errorf("cv: delete: %w", err)
	}
	if s.readiness != nil {
		s.readiness.SetCVOnFile(false, "")
	}
	s.logger.Info("cv deleted")
	return nil
}

// Download returns the CV on file. It fails with domain.ErrNoCVOnFile when
// there is none.
func (s *CVService) Download(ctx context.Context) (string, []byte, error) {
	info, err := s.Info(ctx)
	if err != nil {
		return "", nil, err
	}
	if !info.HasCV {
		return "", nil, domain.ErrNoCVOnFile
	}

	content, err := s.store.DownloadCV(ctx)
	if err != nil {
		var se *domain.ServerError
		if errors.As(err, &se) && se.Status == 404 {
			return "", nil, domain.ErrNoCVOnFile
		}
		return "", nil, fmt.Errorf("cv: download: %w", err)
	}
	return info.FileName, content, nil
}
