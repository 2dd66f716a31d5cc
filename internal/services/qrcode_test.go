package services

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"eventhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedQRCode struct {
	ticketID int
	url      string
}

type fakeQRRecorder struct {
	calls []recordedQRCode
	err   error
}

func (r *fakeQRRecorder) UpdateQRCode(ctx context.Context, ticketID int, qrCode string) error {
	if r.err != nil {
		return r.err
	}
	r.calls = append(r.calls, recordedQRCode{ticketID: ticketID, url: qrCode})
	return nil
}

func TestQRCodeService_Render(t *testing.T) {
	svc := NewQRCodeService(nil, nil, "", 200)

	data, err := svc.Render("ticket:ABCDEF0123456789")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestQRCodeService_Defaults(t *testing.T) {
	svc := NewQRCodeService(nil, nil, "", 0)
	assert.Equal(t, DefaultQRSize, svc.size)
	assert.Equal(t, "qrcodes/qr_ABC.png", svc.Key(&models.Ticket{Reference: "ABC"}))
}

func TestQRCodeService_Issue(t *testing.T) {
	dir := t.TempDir()
	recorder := &fakeQRRecorder{}
	svc := NewQRCodeService(NewFallbackStorageService(dir, "/media"), recorder, "qr", 128)

	ticket := &models.Ticket{ID: 11, Reference: "ABCDEF0123456789"}
	url, err := svc.Issue(context.Background(), ticket)
	require.NoError(t, err)
	assert.Equal(t, "/media/qr/qr_ABCDEF0123456789.png", url)
	assert.Equal(t, []recordedQRCode{{ticketID: 11, url: url}}, recorder.calls)

	data, err := os.ReadFile(filepath.Join(dir, "qr", "qr_ABCDEF0123456789.png"))
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(data))
	assert.NoError(t, err)
}

func TestQRCodeService_IssueReusesStoredImage(t *testing.T) {
	dir := t.TempDir()
	stored := filepath.Join(dir, "qr", "qr_ABCDEF0123456789.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(stored), 0o755))
	require.NoError(t, os.WriteFile(stored, []byte("already here"), 0o644))

	recorder := &fakeQRRecorder{}
	svc := NewQRCodeService(NewFallbackStorageService(dir, "/media"), recorder, "qr", 128)

	url, err := svc.Issue(context.Background(), &models.Ticket{ID: 11, Reference: "ABCDEF0123456789"})
	require.NoError(t, err)
	assert.Equal(t, "/media/qr/qr_ABCDEF0123456789.png", url)
	assert.Equal(t, []recordedQRCode{{ticketID: 11, url: url}}, recorder.calls)

	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, "already here", string(data), "stored image is not re-uploaded")
}

func TestQRCodeService_IssueRecorderFailure(t *testing.T) {
	dir := t.TempDir()
	recorder := &fakeQRRecorder{err: models.ErrTicketNotFound}
	svc := NewQRCodeService(NewFallbackStorageService(dir, "/media"), recorder, "qr", 64)

	_, err := svc.Issue(context.Background(), &models.Ticket{ID: 1, Reference: "R1"})
	assert.True(t, errors.Is(err, models.ErrTicketNotFound))

	_, statErr := os.Stat(filepath.Join(dir, "qr", "qr_R1.png"))
	assert.True(t, os.IsNotExist(statErr), "fresh upload is removed when the ticket cannot record it")
}

func TestQRCodeService_IssueRecorderFailureKeepsStoredImage(t *testing.T) {
	dir := t.TempDir()
	stored := filepath.Join(dir, "qr", "qr_R2.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(stored), 0o755))
	require.NoError(t, os.WriteFile(stored, []byte("png"), 0o644))

	svc := NewQRCodeService(NewFallbackStorageService(dir, "/media"), &fakeQRRecorder{err: models.ErrTicketNotFound}, "qr", 64)

	_, err := svc.Issue(context.Background(), &models.Ticket{ID: 2, Reference: "R2"})
	assert.ErrorIs(t, err, models.ErrTicketNotFound)
	assert.FileExists(t, stored)
}

type blindStorage struct {
	*FallbackStorageService
}

func (b blindStorage) Exists(ctx context.Context, key string) (bool, error) {
	return false, errors.New("head request timed out")
}

func TestQRCodeService_IssueUploadsWhenLookupFails(t *testing.T) {
	dir := t.TempDir()
	svc := NewQRCodeService(blindStorage{NewFallbackStorageService(dir, "/media")}, nil, "qr", 64)

	url, err := svc.Issue(context.Background(), &models.Ticket{ID: 3, Reference: "R3"})
	require.NoError(t, err)
	assert.Equal(t, "/media/qr/qr_R3.png", url)
	assert.FileExists(t, filepath.Join(dir, "qr", "qr_R3.png"))
}
