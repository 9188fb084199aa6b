package dataset

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultSource is the published launch records CSV.
const DefaultSource = "https://cf-courses-data.s3.us.cloud-object-storage.appdomain.cloud/IBM-DS0321EN-SkillsNetwork/datasets/spacex_launch_dash.csv"

// maxBodySize caps how much of a remote source is read.
const maxBodySize = 32 << 20

// ErrNotTabular is returned when a source does not look like CSV text.
var ErrNotTabular = errors.New("source is not CSV text")

type loader struct {
	client *http.Client
	logger logrus.FieldLogger
}

// LoadOption configures Load and Fetch.
type LoadOption func(*loader)

// WithHTTPClient sets the client used for http(s) sources.
func WithHTTPClient(c *http.Client) LoadOption {
	return func(l *loader) {
		if c != nil {
			l.client = c
		}
	}
}

// WithTimeout bounds the whole remote fetch.
func WithTimeout(d time.Duration) LoadOption {
	return func(l *loader) {
		if d > 0 {
			client := *l.client
			client.Timeout = d
			l.client = &client
		}
	}
}

// WithLogger sets the logger used to report the load.
func WithLogger(logger logrus.FieldLogger) LoadOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Load reads the launch records from source and builds the Dataset.
// http:// and https:// sources are downloaded once; anything else is a file
// path. There is no retry: any failure is returned to the caller.
func Load(ctx context.Context, source string, opts ...LoadOption) (*Dataset, error) {
	l := newLoader(opts)

	data, err := l.fetch(ctx, source)
	if err != nil {
		return nil, err
	}

	launches, err := ParseCSV(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", source)
	}

	ds, err := New(launches)
	if err != nil {
		return nil, err
	}

	fields := logrus.Fields{
		"source":      source,
		"launches":    ds.Len(),
		"sites":       len(ds.sites),
		"min_payload": ds.MinPayload(),
		"max_payload": ds.MaxPayload(),
	}
	if ps, err := ds.PayloadStats(); err == nil {
		fields["mean_payload"] = ps.Mean
	}
	l.logger.WithFields(fields).Info("dataset loaded")
	return ds, nil
}

// Fetch returns the raw bytes of source after checking they are CSV text.
func Fetch(ctx context.Context, source string, opts ...LoadOption) ([]byte, error) {
	return newLoader(opts).fetch(ctx, source)
}

func newLoader(opts []LoadOption) *loader {
	l := &loader{
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *loader) fetch(ctx context.Context, source string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if isRemote(source) {
		data, err = l.download(ctx, source)
	} else {
		data, err = os.ReadFile(strings.TrimPrefix(source, "file://"))
		err = errors.Wrapf(err, "reading %s", source)
	}
	if err != nil {
		return nil, err
	}

	if !isTabular(mimetype.Detect(data)) {
		return nil, errors.Wrapf(ErrNotTabular, "%s detected as %s", source, mimetype.Detect(data).String())
	}
	return data, nil
}

func (l *loader) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building dataset request")
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")

	l.logger.WithField("url", url).Debug("fetching dataset")
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", url)
	}
	if len(data) > maxBodySize {
		return nil, errors.Errorf("fetching %s: body larger than %d bytes", url, maxBodySize)
	}
	return data, nil
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// isTabular accepts text/csv and any other plain text; HTML error pages and
// binaries are rejected.
func isTabular(mt *mimetype.MIME) bool {
	if mt.Is("text/html") {
		return false
	}
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/csv") || m.Is("text/plain") {
			return true
		}
	}
	return false
}
