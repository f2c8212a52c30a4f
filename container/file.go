package container

import "io"

// File is an in-memory summary of a container file's structure: its
// header, chained tag sections and chained bands. It holds no tile data;
// callers read tiles through the individual Bands, typically via a
// Raster wrapping the same underlying stream.
type File struct {
	Header *Header
	Tags   []TagSection
	Bands  []*Band
}

// ReadFile walks a container file's header, tag chain and band chain,
// returning a summary of its structure. r's position on return is
// unspecified; callers that go on to read tile data should seek
// explicitly first.
func ReadFile(r io.ReadSeeker) (*File, error) {
	header := &Header{}
	if err := header.ReadHeader(r); err != nil {
		return nil, err
	}
	file := &File{Header: header}

	for tagsOffset := header.FirstTagsOffset; tagsOffset != 0; {
		if _, err := r.Seek(tagsOffset, io.SeekStart); err != nil {
			return nil, err
		}
		var section TagSection
		if err := section.Read(r, header); err != nil {
			return nil, err
		}
		file.Tags = append(file.Tags, section)
		tagsOffset = section.NextTagsStart
	}

	for bandOffset := header.FirstBandOffset; bandOffset != 0; {
		if _, err := r.Seek(bandOffset, io.SeekStart); err != nil {
			return nil, err
		}
		band := &Band{}
		if err := band.ReadBand(r, header); err != nil {
			return nil, err
		}
		file.Bands = append(file.Bands, band)
		bandOffset = band.NextBandStart
	}

	return file, nil
}

// Band looks up a band by name, returning nil if none matches.
func (f *File) Band(name string) *Band {
	for _, b := range f.Bands {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// AllTags flattens every chained tag section into a single map, later
// sections overwriting earlier ones on key collision.
func (f *File) AllTags() map[string]string {
	all := make(map[string]string)
	for _, section := range f.Tags {
		for k, v := range section.Tags {
			all[k] = v
		}
	}
	return all
}
