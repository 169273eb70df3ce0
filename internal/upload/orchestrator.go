// Package upload hands bill files off to the storage backend for
// out-of-band parsing.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"sort"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/trackwise/trackwise-go/internal/api"
	"github.com/trackwise/trackwise-go/internal/logger"
)

// Phase is the orchestrator's position in the two-step transfer.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDescriptorRequested
	PhaseTransferring
	PhaseDone
	PhaseFailed
)

var (
	// ErrNoFileSelected is returned when Upload runs without a held file.
	ErrNoFileSelected = errors.New("no bill file selected")
	// ErrUploadInFlight is returned when Upload runs while a transfer is
	// already pending.
	ErrUploadInFlight = errors.New("an upload is already in flight")
)

// Error is the single user-facing upload failure category. Phase records
// which step broke for diagnostics; callers do not need to distinguish.
type Error struct {
	Phase Phase
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("bill upload failed: %v", e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// File is a selected bill awaiting transfer.
type File struct {
	Name      string
	MediaType string
	Content   []byte
}

// TargetProvider issues scoped write descriptors for bill files.
type TargetProvider interface {
	GetUploadTarget(ctx context.Context, filename string) (api.UploadTarget, error)
}

// Orchestrator transfers one bill file directly to storage using a
// just-in-time write descriptor. Transfers are best-effort and single
// attempt; parsing happens out of band on the backend afterwards, with no
// preview and no polling. An Orchestrator is not safe for concurrent use;
// Uploading lets the caller block re-submission while a transfer is pending.
type Orchestrator struct {
	targets    TargetProvider
	httpClient *http.Client

	file      *File
	phase     Phase
	uploading bool
}

// New creates an upload orchestrator. The timeout bounds the direct storage
// transfer.
func New(targets TargetProvider, timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Orchestrator{
		targets: targets,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Select holds a bill file for the next transfer, replacing any previous
// selection.
func (o *Orchestrator) Select(file File) {
	o.file = &file
	o.phase = PhaseIdle
}

// File returns the currently held file, or nil after a successful transfer
// or before any selection.
func (o *Orchestrator) File() *File {
	return o.file
}

// Uploading reports whether a transfer is in flight.
func (o *Orchestrator) Uploading() bool {
	return o.uploading
}

// Phase returns the orchestrator's current transfer phase.
func (o *Orchestrator) Phase() Phase {
	return o.phase
}

// Upload performs the two-phase hand-off: request a write descriptor for the
// held file, then transfer the file directly to the descriptor's
// destination. A failure at either step leaves the held file in place so the
// same file can be retried; success clears it so a repeat upload requires a
// fresh selection.
func (o *Orchestrator) Upload(ctx context.Context) error {
	if o.uploading {
		return ErrUploadInFlight
	}
	if o.file == nil {
		return ErrNoFileSelected
	}

	o.uploading = true
	defer func() { o.uploading = false }()

	o.phase = PhaseDescriptorRequested
	target, err := o.targets.GetUploadTarget(ctx, o.file.Name)
	if err != nil {
		o.phase = PhaseFailed
		logger.Log.Error().Err(err).Str("filename", o.file.Name).Msg("Upload descriptor request failed")
		return &Error{Phase: PhaseDescriptorRequested, Err: err}
	}

	o.phase = PhaseTransferring
	if err := o.transfer(ctx, target, *o.file); err != nil {
		o.phase = PhaseFailed
		logger.Log.Error().Err(err).Str("filename", o.file.Name).Msg("Bill transfer failed")
		return &Error{Phase: PhaseTransferring, Err: err}
	}

	logger.Log.Info().Str("filename", o.file.Name).Str("key", target.Key).Msg("Bill transferred to storage")
	o.file = nil
	o.phase = PhaseDone
	return nil
}

// transfer posts the multipart body to the descriptor's destination: every
// required field verbatim, then the declared media type, then the binary
// file content last. Storage policies require the file to be the final part.
func (o *Orchestrator) transfer(ctx context.Context, target api.UploadTarget, file File) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	fieldNames := make([]string, 0, len(target.Fields))
	for name := range target.Fields {
		fieldNames = append(fieldNames, name)
	}
	sort.Strings(fieldNames)
	for _, name := range fieldNames {
		if err := writer.WriteField(name, target.Fields[name]); err != nil {
			return fmt.Errorf("write form field %q: %w", name, err)
		}
	}

	if err := writer.WriteField("Content-Type", file.MediaType); err != nil {
		return fmt.Errorf("write content type field: %w", err)
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
	header.Set("Content-Type", file.MediaType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(file.Content); err != nil {
		return fmt.Errorf("write file content: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL, &body)
	if err != nil {
		return fmt.Errorf("create transfer request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("transfer to storage: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("storage returned status %d", resp.StatusCode)
	}
	return nil
}

// DetectMediaType derives a media type from the file name, falling back to
// a generic binary type for unknown extensions.
func DetectMediaType(filename string) string {
	if mediaType := mime.TypeByExtension(filepath.Ext(filename)); mediaType != "" {
		return mediaType
	}
	return "application/octet-stream"
}
