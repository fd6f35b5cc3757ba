// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package backup saves the on-disk sections of a partition table to a
// directory and writes them back. The directory holds one file per section
// and a DFXML report recording where each file belongs on the disk.
package backup

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ostafen/partedit/internal/env"
	"github.com/ostafen/partedit/internal/logger"
	"github.com/ostafen/partedit/pkg/dfxml"
	"github.com/ostafen/partedit/pkg/label"
)

const (
	ReportName = "backup.xml"
	digestType = "sha256"
)

var ErrMismatch = errors.New("backup does not match the device")

// Image describes the disk a backup was taken from.
type Image struct {
	Name       string
	SectorSize int
	Size       int64
	Table      string
}

// Section is one saved region and its content.
type Section struct {
	Name   string
	Offset int64
	Data   []byte
}

type Backup struct {
	Image    Image
	Sections []Section
}

// Save reads sections from r and stores them in dir, which is created if
// needed. It returns the paths of the files written, report last.
func Save(dir string, r io.ReaderAt, img Image, sections []label.TableSection) ([]string, error) {
	log := logger.Default().Named("backup")

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	var (
		paths   []string
		objects []dfxml.FileObject
	)
	for _, s := range sections {
		buf := make([]byte, s.Size)
		if _, err := r.ReadAt(buf, s.Offset); err != nil {
			return nil, fmt.Errorf("read %s at offset %d: %w", s.Name, s.Offset, err)
		}

		name := sectionFileName(s)
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, buf, 0644); err != nil {
			return nil, err
		}
		paths = append(paths, path)

		sum := sha256.Sum256(buf)
		objects = append(objects, dfxml.FileObject{
			Filename: name,
			FileSize: uint64(s.Size),
			ByteRuns: dfxml.ByteRuns{Runs: []dfxml.ByteRun{{
				ImgOffset: uint64(s.Offset),
				Length:    uint64(s.Size),
			}}},
			HashDigests: []dfxml.HashDigest{{Type: digestType, Value: hex.EncodeToString(sum[:])}},
		})
		log.Debugf("saved %s (%d bytes at offset %d) to %s", s.Name, s.Size, s.Offset, path)
	}

	report := filepath.Join(dir, ReportName)
	if err := writeReport(report, img, objects); err != nil {
		return nil, err
	}
	return append(paths, report), nil
}

func writeReport(path string, img Image, objects []dfxml.FileObject) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	w := dfxml.NewDFXMLWriter(bw)

	err = w.WriteHeader(dfxml.DFXMLHeader{
		XmlOutput: dfxml.XmlOutputVersion,
		Metadata:  dfxml.DefaultMetadata,
		Creator: dfxml.Creator{
			Package:              "partedit",
			Version:              env.Version,
			ExecutionEnvironment: dfxml.GetExecEnv(),
		},
		Source: dfxml.Source{
			ImageFilename:  img.Name,
			SectorSize:     img.SectorSize,
			ImageSize:      uint64(img.Size),
			PartitionTable: img.Table,
		},
	})
	if err != nil {
		return err
	}

	for _, o := range objects {
		if err := w.WriteFileObject(o); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Sync()
}

// Load reads the backup stored in dir and checks every section against
// the size and digest recorded in the report.
func Load(dir string) (*Backup, error) {
	f, err := os.Open(filepath.Join(dir, ReportName))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rep, err := dfxml.ReadReport(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("invalid backup report: %w", err)
	}
	if len(rep.Objects) == 0 {
		return nil, fmt.Errorf("invalid backup report: no sections")
	}

	b := &Backup{
		Image: Image{
			Name:       rep.Source.ImageFilename,
			SectorSize: rep.Source.SectorSize,
			Size:       int64(rep.Source.ImageSize),
			Table:      rep.Source.PartitionTable,
		},
	}
	for _, o := range rep.Objects {
		s, err := loadSection(dir, o)
		if err != nil {
			return nil, err
		}
		b.Sections = append(b.Sections, s)
	}
	return b, nil
}

func loadSection(dir string, o dfxml.FileObject) (Section, error) {
	if len(o.ByteRuns.Runs) != 1 {
		return Section{}, fmt.Errorf("%s: expected one byte run, found %d", o.Filename, len(o.ByteRuns.Runs))
	}
	run := o.ByteRuns.Runs[0]

	// Reports only name files inside the backup directory.
	if o.Filename != filepath.Base(o.Filename) {
		return Section{}, fmt.Errorf("%s: invalid file name", o.Filename)
	}
	data, err := os.ReadFile(filepath.Join(dir, o.Filename))
	if err != nil {
		return Section{}, err
	}
	if uint64(len(data)) != run.Length || o.FileSize != run.Length {
		return Section{}, fmt.Errorf("%s: size %d does not match the recorded %d bytes", o.Filename, len(data), run.Length)
	}

	if want, ok := o.Digest(digestType); ok {
		sum := sha256.Sum256(data)
		if got := hex.EncodeToString(sum[:]); !strings.EqualFold(got, want) {
			return Section{}, fmt.Errorf("%s: %s digest mismatch", o.Filename, digestType)
		}
	}

	return Section{
		Name:   sectionName(o.Filename),
		Offset: int64(run.ImgOffset),
		Data:   data,
	}, nil
}

// Restore writes every section back to w, a device of the given geometry.
// Nothing is written when the geometry differs from the one recorded.
func (b *Backup) Restore(w io.WriterAt, sectorSize int, size int64) error {
	if b.Image.SectorSize != sectorSize {
		return fmt.Errorf("sector size %d, backup taken with %d: %w", sectorSize, b.Image.SectorSize, ErrMismatch)
	}
	if b.Image.Size != size {
		return fmt.Errorf("device of %d bytes, backup taken from %d: %w", size, b.Image.Size, ErrMismatch)
	}
	for _, s := range b.Sections {
		if s.Offset+int64(len(s.Data)) > size {
			return fmt.Errorf("%s ends past the device end: %w", s.Name, ErrMismatch)
		}
	}

	log := logger.Default().Named("backup")
	for _, s := range b.Sections {
		if _, err := w.WriteAt(s.Data, s.Offset); err != nil {
			return fmt.Errorf("restore %s: %w", s.Name, err)
		}
		log.Debugf("restored %s (%d bytes at offset %d)", s.Name, len(s.Data), s.Offset)
	}
	return nil
}

func sectionFileName(s label.TableSection) string {
	slug := strings.ToLower(strings.ReplaceAll(s.Name, " ", "-"))
	return fmt.Sprintf("%s-0x%08x.bak", slug, s.Offset)
}

func sectionName(file string) string {
	name := strings.TrimSuffix(file, ".bak")
	if i := strings.LastIndex(name, "-0x"); i >= 0 {
		name = name[:i]
	}
	return name
}
