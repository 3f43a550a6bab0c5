package v1handler

import (
	"context"
	"net/http"
	"phishguard/pkg/domain"
	"phishguard/pkg/logger"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.uber.org/zap"
)

// ScanURLRequest is the body of POST /v1/scans/url.
type ScanURLRequest struct {
	URL string
}

// Decode reads the request object. Unknown fields are ignored; a null url is
// the same as a missing one.
func (s *ScanURLRequest) Decode(d *jx.Decoder) error {
	if d.Next() != jx.Object {
		return errors.New("request body must be a JSON object")
	}

	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "url":
			if d.Next() == jx.Null {
				return d.Null() //nolint: wrapcheck
			}
			v, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "decode field \"url\"")
			}
			s.URL = v

			return nil
		default:
			return d.Skip() //nolint: wrapcheck
		}
	})
}

func encodeNotice(e *jx.Encoder, n domain.Notice) {
	e.ObjStart()
	e.FieldStart("code")
	e.Str(n.Code)
	e.FieldStart("message")
	e.Str(n.Message)
	e.ObjEnd()
}

// encodeVerdict writes v as
// {"status", "url"?, "threats": [...], "notices": [...]}. threats and
// notices are always present so clients can iterate without null checks.
func encodeVerdict(v domain.Verdict) []byte {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	e.ObjStart()
	e.FieldStart("status")
	e.Str(string(v.Status))
	if v.URL != "" {
		e.FieldStart("url")
		e.Str(v.URL.String())
	}
	e.FieldStart("threats")
	e.ArrStart()
	for _, t := range v.Threats {
		e.Str(t)
	}
	e.ArrEnd()
	e.FieldStart("notices")
	e.ArrStart()
	for _, n := range v.Notices {
		encodeNotice(e, n)
	}
	e.ArrEnd()
	e.ObjEnd()

	return append([]byte(nil), e.Bytes()...)
}

func encodeError(res ErrorResponse) []byte {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	encodeNotice(e, domain.Notice{Code: res.Code, Message: res.Message})

	return append([]byte(nil), e.Bytes()...)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logger.Debug(ctx, "could not write response", zap.Error(err))
	}
}
