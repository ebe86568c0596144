package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/KaramelBytes/housing-explorer/internal/cache"
	"github.com/KaramelBytes/housing-explorer/internal/logging"
	"github.com/KaramelBytes/housing-explorer/internal/metrics"
)

// Options controls parsing.
type Options struct {
	// Delimiter for delimited text. If 0, sniffed from the header line.
	Delimiter rune
	// DecimalSeparator for numbers. If 0, detected per value.
	DecimalSeparator rune
	// ThousandsSeparator for numbers. If 0, whichever of ',' and '.' is not the
	// decimal mark is dropped.
	ThousandsSeparator rune
	// Sheet selects the XLSX sheet by name; empty means the first sheet.
	Sheet string
}

// DefaultOptions returns the parsing defaults: '.' decimals, sniffed delimiter.
func DefaultOptions() Options {
	return Options{DecimalSeparator: '.'}
}

// Loader parses sources into datasets and memoizes them by source identity.
type Loader struct {
	opt   Options
	cache *cache.Cache[*Dataset]
	log   *zap.Logger
}

// NewLoader returns a loader with an empty cache.
func NewLoader(opt Options, log *zap.Logger) *Loader {
	return &Loader{
		opt:   opt,
		cache: cache.New[*Dataset]("dataset"),
		log:   logging.OrNop(log),
	}
}

// Load returns the dataset for src. Repeated loads of the same identity return
// the cached dataset without re-parsing. The entry stays cached for the life of
// the loader.
func (l *Loader) Load(src Source) (*Dataset, error) {
	return l.load(src, l.cache.GetOrCompute)
}

// Acquire is Load for callers with a bounded lifetime, such as a dashboard
// session: the cached dataset is held until the matching Release.
func (l *Loader) Acquire(src Source) (*Dataset, error) {
	return l.load(src, l.cache.Acquire)
}

// Release gives back a dataset obtained from Acquire. It reports whether that
// was the last holder and the dataset left the cache.
func (l *Loader) Release(ds *Dataset) bool {
	if ds == nil {
		return false
	}
	evicted := l.cache.Release(ds.Fingerprint())
	if evicted {
		l.log.Debug("dataset evicted", zap.String("identity", ds.Fingerprint()))
	}
	return evicted
}

type lookupFunc func(key string, fn func() (*Dataset, error)) (*Dataset, bool, error)

func (l *Loader) load(src Source, lookup lookupFunc) (*Dataset, error) {
	timer := metrics.NewTimer()
	key, err := src.Identity()
	if err != nil {
		l.fail(src, err)
		return nil, err
	}
	ds, hit, err := lookup(key, func() (*Dataset, error) {
		return l.parse(src, key)
	})
	if err != nil {
		l.fail(src, err)
		return nil, err
	}
	outcome := "ok"
	if hit {
		outcome = "cached"
	}
	metrics.DatasetLoads.WithLabelValues(string(src.Kind), outcome).Inc()
	l.log.Debug("dataset loaded",
		zap.String("source", src.label()),
		zap.String("identity", key),
		zap.Bool("cached", hit),
		zap.Int("rows", ds.Len()),
		zap.Int("columns", ds.NumColumns()),
		zap.Duration("elapsed", timer.Elapsed()),
	)
	return ds, nil
}

// CacheLen reports the number of memoized datasets.
func (l *Loader) CacheLen() int { return l.cache.Len() }

func (l *Loader) fail(src Source, err error) {
	outcome := "error"
	var le *LoadError
	if errors.As(err, &le) {
		outcome = le.Kind.String()
	}
	metrics.DatasetLoads.WithLabelValues(string(src.Kind), outcome).Inc()
	l.log.Warn("dataset load failed", zap.String("source", src.label()), zap.Error(err))
}

func (l *Loader) parse(src Source, identity string) (*Dataset, error) {
	data := src.Data
	if src.Kind == SourceFile {
		b, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, &LoadError{Kind: FileNotFound, Source: src.Path, Err: err}
		}
		data = b
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &LoadError{Kind: FileNotFound, Source: src.label(), Err: errors.New("empty file")}
	}
	records, err := formatFor(src.Name).Read(data, src.Name, l.opt)
	if err != nil {
		return nil, &LoadError{Kind: ParseError, Source: src.label(), Err: err}
	}
	ds, err := fromRecords(src.Name, records, l.opt)
	if err != nil {
		return nil, &LoadError{Kind: ParseError, Source: src.label(), Err: err}
	}
	ds.fingerprint = identity
	metrics.DatasetRows.Set(float64(ds.Len()))
	return ds, nil
}

// Parse builds a dataset from raw records whose first record is the header.
func Parse(name string, records [][]string, opt Options) (*Dataset, error) {
	return fromRecords(name, records, opt)
}

func fromRecords(name string, records [][]string, opt Options) (*Dataset, error) {
	if len(records) == 0 {
		return nil, errors.New("missing header row")
	}
	header := normalizeHeader(records[0])
	ncol := len(header)
	if ncol == 0 {
		return nil, errors.New("header row has no columns")
	}
	rows := make([][]Value, 0, len(records)-1)
	for _, rec := range records[1:] {
		if isBlankRecord(rec) {
			continue
		}
		row := make([]Value, ncol)
		for j := 0; j < ncol && j < len(rec); j++ {
			row[j] = parseCell(rec[j], opt)
		}
		rows = append(rows, row)
	}
	inferColumns(rows, ncol)
	return New(name, header, rows)
}

// normalizeHeader trims names, names blank columns "Unnamed: <i>" and suffixes
// duplicates with ".1", ".2", ... the way pandas does.
func normalizeHeader(raw []string) []string {
	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[name]; dup {
			base := name
			for {
				n++
				name = fmt.Sprintf("%s.%d", base, n)
				if _, taken := seen[name]; !taken {
					break
				}
			}
			seen[base] = n
		}
		seen[name] = 0
		out[i] = name
	}
	return out
}

func isBlankRecord(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
