package sermons

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

const (
	audioField       = "audio"
	titleField       = "title"
	descriptionField = "description"

	// maxTextField bounds each text part of the form.
	maxTextField = 64 << 10
	// formOverhead is the allowance for boundaries, headers, and text parts
	// on top of the audio ceiling.
	formOverhead = 1 << 20
)

// form holds the fields read from a sermon multipart body.
// Text fields are nil unless present and non-blank after trimming.
type form struct {
	title       *string
	description *string
	audio       []byte
}

// readForm streams the multipart body part by part. The audio part is read
// through a limit of maxUpload+1 bytes so an oversize upload fails with
// ErrFileTooLarge before it is fully buffered. Nothing is written to disk.
func readForm(w http.ResponseWriter, r *http.Request, maxUpload int64) (form, error) {
	var f form

	r.Body = http.MaxBytesReader(w, r.Body, maxUpload+formOverhead)

	mr, err := r.MultipartReader()
	if err != nil {
		return f, ErrInvalidForm
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return f, nil
		}
		if err != nil {
			return f, partError(err)
		}

		switch part.FormName() {
		case audioField:
			data, err := io.ReadAll(io.LimitReader(part, maxUpload+1))
			if err != nil {
				return f, partError(err)
			}
			if int64(len(data)) > maxUpload {
				return f, ErrFileTooLarge
			}
			f.audio = data
		case titleField:
			if f.title, err = readText(part); err != nil {
				return f, err
			}
		case descriptionField:
			if f.description, err = readText(part); err != nil {
				return f, err
			}
		}

		part.Close()
	}
}

func readText(part *multipart.Part) (*string, error) {
	data, err := io.ReadAll(io.LimitReader(part, maxTextField+1))
	if err != nil {
		return nil, partError(err)
	}
	if len(data) > maxTextField {
		return nil, ErrInvalidForm
	}

	s := strings.TrimSpace(string(data))
	if s == "" {
		return nil, nil
	}
	return &s, nil
}

func partError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return ErrFileTooLarge
	}
	return ErrInvalidForm
}
