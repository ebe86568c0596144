package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"
)

const housingCSV = `longitude,latitude,housing_median_age,total_rooms,total_bedrooms,population,households,median_income,median_house_value,ocean_proximity
-122.23,37.88,41,880,129,322,126,8.3252,452600,NEAR BAY
-122.22,37.86,21,7099,1106,2401,1138,8.3014,358500,NEAR BAY
-122.24,37.85,52,1467,,496,177,7.2574,352100,NEAR BAY
-118.30,34.05,30,2000,400,1000,380,2.5,150000,<1H OCEAN
-117.10,32.70,15,3000,600,1500,500,3.1,200000,NEAR OCEAN
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func newTestLoader(t *testing.T) *Loader {
	return NewLoader(DefaultOptions(), zaptest.NewLogger(t))
}

func TestLoadHousingCSV(t *testing.T) {
	path := writeFile(t, "housing.csv", housingCSV)
	ds, err := newTestLoader(t).Load(FileSource(path))
	require.NoError(t, err)

	assert.Equal(t, 5, ds.Len())
	assert.Equal(t, 10, ds.NumColumns())
	assert.Equal(t, "housing.csv", ds.Name())
	assert.Contains(t, ds.Fingerprint(), "file:")

	c := Classify(ds)
	assert.Equal(t, []string{
		ColLongitude, ColLatitude, ColHousingMedianAge, ColTotalRooms, ColTotalBedrooms,
		ColPopulation, ColHouseholds, ColMedianIncome, ColMedianHouseValue,
	}, c.Numeric)
	assert.Len(t, c.All, 10)
	assert.False(t, c.IsNumeric("ocean_proximity"))

	bedrooms, err := ds.Column(ColTotalBedrooms)
	require.NoError(t, err)
	assert.True(t, bedrooms[2].IsMissing())

	f, ok := ds.At(0, 0).Float()
	require.True(t, ok)
	assert.InDelta(t, -122.23, f, 1e-9)
	assert.Equal(t, "NEAR BAY", ds.At(0, 9).Text())
}

func TestLoadMemoizesByIdentity(t *testing.T) {
	path := writeFile(t, "housing.csv", housingCSV)
	l := newTestLoader(t)

	first, err := l.Load(FileSource(path))
	require.NoError(t, err)
	second, err := l.Load(FileSource(path))
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, l.CacheLen())

	up1, err := l.Load(UploadSource("a.csv", []byte(housingCSV)))
	require.NoError(t, err)
	up2, err := l.Load(UploadSource("b.csv", []byte(housingCSV)))
	require.NoError(t, err)
	assert.Same(t, up1, up2, "identical upload bytes share one cache entry")
	assert.Equal(t, 2, l.CacheLen())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := newTestLoader(t).Load(FileSource(filepath.Join(t.TempDir(), "housing.csv")))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFileNotFound)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, FileNotFound, le.Kind)
}

func TestLoadDirectoryIsNotFound(t *testing.T) {
	_, err := newTestLoader(t).Load(FileSource(t.TempDir()))
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLoadEmptySources(t *testing.T) {
	l := newTestLoader(t)
	for name, data := range map[string]string{
		"zero bytes": "",
		"whitespace": "  \n\t\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := l.Load(UploadSource("empty.csv", []byte(data)))
			assert.ErrorIs(t, err, ErrFileNotFound)
		})
	}

	path := writeFile(t, "empty.csv", "")
	_, err := l.Load(FileSource(path))
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLoadMalformedCSV(t *testing.T) {
	_, err := newTestLoader(t).Load(UploadSource("bad.csv", []byte("a,b\n1,x\"y\n")))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
	assert.NotErrorIs(t, err, ErrFileNotFound)
}

func TestLoadFailuresAreNotCached(t *testing.T) {
	l := newTestLoader(t)
	_, err := l.Load(UploadSource("bad.csv", []byte("a,b\nx\"y,1\n")))
	require.Error(t, err)
	assert.Equal(t, 0, l.CacheLen())
}

func TestHeaderNormalization(t *testing.T) {
	ds, err := newTestLoader(t).Load(UploadSource("h.csv", []byte(" ,a,a, b ,a\n1,2,3,4,5\n")))
	require.NoError(t, err)
	assert.Equal(t, []string{"Unnamed: 0", "a", "a.1", "b", "a.2"}, ds.Columns())
}

func TestRaggedRows(t *testing.T) {
	ds, err := newTestLoader(t).Load(UploadSource("r.csv", []byte("a,b,c\n1\n4,5,6,7\n\n")))
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len(), "blank lines are skipped")
	assert.True(t, ds.At(0, 1).IsMissing())
	assert.True(t, ds.At(0, 2).IsMissing())
	assert.Equal(t, []string{"4", "5", "6"}, ds.Row(1))
}

func TestColumnTypeInference(t *testing.T) {
	data := "mostly_num,mostly_text,empty,tokens\n1,x,,NA\n2,y,,null\nabc,3,,None\n4,z,,5\n"
	ds, err := newTestLoader(t).Load(UploadSource("t.csv", []byte(data)))
	require.NoError(t, err)

	assert.True(t, ds.IsNumeric("mostly_num"))
	assert.True(t, ds.At(2, 0).IsMissing(), "malformed cell in numeric column becomes missing")

	assert.False(t, ds.IsNumeric("mostly_text"))
	assert.Equal(t, Text, ds.At(2, 1).Kind)
	assert.Equal(t, "3", ds.At(2, 1).Text())

	assert.True(t, ds.IsNumeric("empty"), "all-missing column counts as numeric")

	assert.True(t, ds.IsNumeric("tokens"))
	for i := 0; i < 3; i++ {
		assert.True(t, ds.At(i, 3).IsMissing())
	}
}

func TestSniffDelimiter(t *testing.T) {
	ds, err := newTestLoader(t).Load(UploadSource("semi.csv", []byte("a;b;c\n1;2;3\n")))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ds.Columns())

	ds, err = newTestLoader(t).Load(UploadSource("tabs.tsv", []byte("a\tb\n1\t2\n")))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ds.Columns())
}

func TestDecimalCommaOption(t *testing.T) {
	opt := Options{Delimiter: ';', DecimalSeparator: ',', ThousandsSeparator: '.'}
	ds, err := NewLoader(opt, nil).Load(UploadSource("eu.csv", []byte("price;rate\n1.250,5;0,25\n")))
	require.NoError(t, err)
	price, _ := ds.At(0, 0).Float()
	rate, _ := ds.At(0, 1).Float()
	assert.InDelta(t, 1250.5, price, 1e-9)
	assert.InDelta(t, 0.25, rate, 1e-9)
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"longitude", "latitude", "median_house_value", "ocean_proximity"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{-122.23, 37.88, 452600, "NEAR BAY"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{-118.3, 34.05, 150000, "INLAND"}))
	_, err := f.NewSheet("Other")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Other", "A1", &[]any{"x"}))
	require.NoError(t, f.SetSheetRow("Other", "A2", &[]any{7}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	ds, err := newTestLoader(t).Load(UploadSource("houses.xlsx", buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, []string{"longitude", "latitude", "median_house_value"}, Classify(ds).Numeric)
	price, ok := ds.At(1, 2).Float()
	require.True(t, ok)
	assert.Equal(t, 150000.0, price)

	ds, err = NewLoader(Options{Sheet: "other"}, nil).Load(UploadSource("houses.xlsx", buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, ds.Columns())

	_, err = NewLoader(Options{Sheet: "missing"}, nil).Load(UploadSource("houses.xlsx", buf.Bytes()))
	assert.ErrorIs(t, err, ErrParse)
}

func TestLoadCorruptXLSX(t *testing.T) {
	_, err := newTestLoader(t).Load(UploadSource("broken.xlsx", []byte("not a zip")))
	assert.ErrorIs(t, err, ErrParse)
}

func TestAcquireReleaseEvictsWithLastHolder(t *testing.T) {
	l := newTestLoader(t)
	src := UploadSource("housing.csv", []byte(housingCSV))

	a, err := l.Acquire(src)
	require.NoError(t, err)
	b, err := l.Acquire(src)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, l.CacheLen())

	assert.False(t, l.Release(a))
	assert.Equal(t, 1, l.CacheLen())
	assert.True(t, l.Release(b))
	assert.Equal(t, 0, l.CacheLen())
	assert.False(t, l.Release(nil))

	_, err = l.Acquire(UploadSource("empty.csv", []byte("\n")))
	require.Error(t, err)
	assert.Equal(t, 0, l.CacheLen())
}
