package dfxml

import (
	"encoding/xml"
	"errors"
	"io"
)

// Report is a parsed DFXML document.
type Report struct {
	Source  Source
	Objects []FileObject
}

// ReadReport decodes the source description and every file object of a
// report, skipping elements it does not know.
func ReadReport(r io.Reader) (*Report, error) {
	dec := xml.NewDecoder(r)
	var rep Report

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return &rep, nil
		}
		if err != nil {
			return nil, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "source":
			if err := dec.DecodeElement(&rep.Source, &start); err != nil {
				return nil, err
			}
		case "fileobject":
			var fo FileObject
			if err := dec.DecodeElement(&fo, &start); err != nil {
				return nil, err
			}
			rep.Objects = append(rep.Objects, fo)
		}
	}
}
