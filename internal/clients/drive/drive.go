package drive

import (
	"context"
	"io"
	"net/url"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/kakeibo-dev/ledger/internal/entity/record"
	"github.com/kakeibo-dev/ledger/internal/logger"
	"github.com/kakeibo-dev/ledger/internal/model/customerr"
)

type config interface {
	FolderID() string
}

// Client is a thin wrapper over the Drive v3 API. The token source is
// injected; the client never initiates an auth flow itself.
type Client struct {
	svc      *gdrive.Service
	folderID string
}

func New(ctx context.Context, tokenSource oauth2.TokenSource, config config) (*Client, error) {
	svc, err := gdrive.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, errors.Wrap(err, "cannot init drive service")
	}
	return &Client{svc: svc, folderID: config.FolderID()}, nil
}

func ViewURL(fileID string) string {
	return "https://drive.google.com/file/d/" + url.PathEscape(fileID) + "/view"
}

func PreviewURL(fileID string) string {
	return "https://drive.google.com/uc?export=preview&id=" + url.QueryEscape(fileID)
}

// Upload stores the file and returns its reference. The uploaded file is
// made publicly readable; a failed permission change is logged only, since
// the owner can still open the link.
func (c *Client) Upload(ctx context.Context, name string, content io.Reader) (record.Attachment, error) {
	meta := &gdrive.File{Name: name}
	if c.folderID != "" {
		meta.Parents = []string{c.folderID}
	}

	created, err := c.svc.Files.Create(meta).Media(content).Context(ctx).Do()
	if err != nil {
		return record.Attachment{}, &customerr.UploadError{FileName: name, Err: err}
	}

	c.makePublic(ctx, created.Id)

	return record.Attachment{
		FileID:     created.Id,
		FileName:   name,
		FileURL:    ViewURL(created.Id),
		PreviewURL: PreviewURL(created.Id),
	}, nil
}

func (c *Client) makePublic(ctx context.Context, fileID string) {
	_, err := c.svc.Permissions.Create(fileID, &gdrive.Permission{
		Role: "reader",
		Type: "anyone",
	}).Context(ctx).Do()
	if err != nil {
		logger.Warn("cannot make file public", zap.String("fileID", fileID), zap.Error(err))
	}
}

// Delete removes the remote file best-effort. Deleting an already-deleted
// id is not an error worth surfacing.
func (c *Client) Delete(ctx context.Context, fileID string) {
	err := c.svc.Files.Delete(fileID).Context(ctx).Do()
	if err != nil {
		logger.Warn("cannot delete drive file", zap.String("fileID", fileID), zap.Error(err))
	}
}
