package app

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"jobboard/internal/util"
	"jobboard/pkg/domain"
)

func resumePrefix(userID string) string {
	return "resumes/" + userID + "/"
}

// UploadResume stores a resume file for the caller and returns its object
// key, which can then be referenced from an application.
func (a *App) UploadResume(ctx context.Context, actor domain.User, filename string, r io.Reader, size int64) (string, error) {
	if a.objects == nil {
		return "", fmt.Errorf("object storage is not configured")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !slices.Contains(a.allowedExt, ext) {
		return "", invalidInput("file type not allowed; use " + strings.Join(a.allowedExt, ", "))
	}
	if size <= 0 {
		return "", invalidInput("file is empty")
	}
	if size > a.maxUploadBytes {
		return "", ErrFileTooLarge
	}
	key := resumePrefix(actor.ID) + util.NewID() + ext
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := a.objects.Put(ctx, key, io.LimitReader(r, size), size, contentType); err != nil {
		return "", wrap("store resume", err)
	}
	util.LoggerFromContext(ctx).Info("resume uploaded", "user_id", actor.ID, "key", key, "size", size)
	return key, nil
}

// storedResumes maps the stored resume keys of the applications to jobIDs to
// their applicant. External resume URLs are skipped.
func (a *App) storedResumes(ctx context.Context, jobIDs ...string) (map[string]string, error) {
	keys := make(map[string]string)
	if a.objects == nil {
		return keys, nil
	}
	for _, jobID := range jobIDs {
		apps, err := a.store.ListApplicationsByJob(ctx, jobID)
		if err != nil {
			return nil, wrap("list applications", err)
		}
		for _, app := range apps {
			if app.Resume != "" && !isExternalURL(app.Resume) {
				keys[app.Resume] = app.ApplicantID
			}
		}
	}
	return keys, nil
}

// removeOrphanResumes deletes stored resumes that no remaining application
// references. Failures are logged and never returned.
func (a *App) removeOrphanResumes(ctx context.Context, keys map[string]string) {
	if len(keys) == 0 {
		return
	}
	logger := util.LoggerFromContext(ctx)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	for key, applicantID := range keys {
		apps, err := a.store.ListApplicationsByApplicant(ctx, applicantID)
		if err != nil {
			logger.Warn("resume cleanup skipped", "key", key, "err", err)
			continue
		}
		if slices.ContainsFunc(apps, func(app domain.Application) bool { return app.Resume == key }) {
			continue
		}
		if err := a.objects.Delete(ctx, key); err != nil {
			logger.Warn("resume delete failed", "key", key, "err", err)
			continue
		}
		logger.Info("resume deleted", "user_id", applicantID, "key", key)
	}
}
