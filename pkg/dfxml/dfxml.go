// Package dfxml reads and writes Digital Forensics XML reports. partedit
// uses them to index the byte ranges saved by a partition table backup.
package dfxml

import (
	"encoding/xml"
	"os"
	"os/user"
	"runtime"
	"strconv"
	"time"
)

const XmlOutputVersion = "1.0"

var DefaultMetadata = Metadata{
	Xmlns:    "http://www.forensicswiki.org/wiki/Category:Digital_Forensics_XML",
	XmlnsXsi: "http://www.w3.org/2001/XMLSchema-instance",
	XmlnsDC:  "http://purl.org/dc/elements/1.1/",
	Type:     "Partition Table Backup",
}

type DFXMLHeader struct {
	XMLName   xml.Name `xml:"dfxml"`
	XmlOutput string   `xml:"xmloutputversion,attr,omitempty"`
	Metadata  Metadata `xml:"metadata"`
	Creator   Creator  `xml:"creator"`
	Source    Source   `xml:"source"`
}

type Metadata struct {
	Xmlns    string `xml:"xmlns,attr"`
	XmlnsXsi string `xml:"xmlns:xsi,attr"`
	XmlnsDC  string `xml:"xmlns:dc,attr"`
	Type     string `xml:"dc:type"`
}

type Creator struct {
	Package              string  `xml:"package"`
	Version              string  `xml:"version"`
	ExecutionEnvironment ExecEnv `xml:"execution_environment"`
}

type ExecEnv struct {
	OS    string `xml:"os_sysname"`
	Host  string `xml:"host"`
	Arch  string `xml:"arch"`
	UID   int    `xml:"uid"`
	Start string `xml:"start_time"`
}

// Source describes the disk the report was taken from.
type Source struct {
	ImageFilename string `xml:"image_filename"`
	SectorSize    int    `xml:"sectorsize"`
	ImageSize     uint64 `xml:"image_size"`
	// PartitionTable is the label kind, such as "dos" or "gpt".
	PartitionTable string `xml:"partition_table,omitempty"`
}

// FileObject is one saved byte range: Filename holds its bytes, and the
// single byte run tells where they live on the disk.
type FileObject struct {
	XMLName     xml.Name     `xml:"fileobject"`
	Filename    string       `xml:"filename"`
	FileSize    uint64       `xml:"filesize"`
	ByteRuns    ByteRuns     `xml:"byte_runs"`
	HashDigests []HashDigest `xml:"hashdigest,omitempty"`
}

type ByteRuns struct {
	Runs []ByteRun `xml:"byte_run"`
}

type ByteRun struct {
	Offset    uint64 `xml:"offset,attr"`
	ImgOffset uint64 `xml:"img_offset,attr"`
	Length    uint64 `xml:"len,attr"`
}

type HashDigest struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

// Digest returns the value of the digest of the given type.
func (o *FileObject) Digest(typ string) (string, bool) {
	for _, d := range o.HashDigests {
		if d.Type == typ {
			return d.Value, true
		}
	}
	return "", false
}

func GetExecEnv() ExecEnv {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown_host"
	}

	uid := 0
	if u, err := user.Current(); err == nil {
		if n, err := strconv.Atoi(u.Uid); err == nil {
			uid = n
		}
	}

	return ExecEnv{
		OS:    runtime.GOOS,
		Host:  host,
		Arch:  runtime.GOARCH,
		UID:   uid,
		Start: time.Now().UTC().Format("2006-01-02T15:04:05Z"),
	}
}
