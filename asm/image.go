package asm

import (
	"bytes"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/sarchlab/broas/errs"
)

// ImageMagic starts every program image.
const ImageMagic = "BROASIMG"

// ImageVersion is the image layout written by EncodeImage.
const ImageVersion = 1

type image struct {
	Version int      `cbor:"1,keyasint"`
	Program *Program `cbor:"2,keyasint"`
}

var imageEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	imageEncMode = em
}

// IsImage reports whether data starts with the image magic.
func IsImage(data []byte) bool {
	return bytes.HasPrefix(data, []byte(ImageMagic))
}

// EncodeImage writes an assembled program so it can be run without the
// source.
func EncodeImage(w io.Writer, p *Program) error {
	body, err := imageEncMode.Marshal(image{Version: ImageVersion, Program: p})
	if err != nil {
		return errs.Image.Wrap(err, "encode image")
	}

	if _, err := io.WriteString(w, ImageMagic); err != nil {
		return errs.Image.Wrap(err, "write image")
	}
	if _, err := w.Write(body); err != nil {
		return errs.Image.Wrap(err, "write image")
	}
	return nil
}

// DecodeImage reads a program written by EncodeImage and checks that every
// instruction is well formed.
func DecodeImage(r io.Reader) (*Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.Image.Wrap(err, "read image")
	}
	return decodeImage(data)
}

func decodeImage(data []byte) (*Program, error) {
	if !IsImage(data) {
		return nil, errs.Image.New("missing %s header", ImageMagic)
	}

	var img image
	if err := cbor.Unmarshal(data[len(ImageMagic):], &img); err != nil {
		return nil, errs.Image.Wrap(err, "decode image")
	}
	if img.Version != ImageVersion {
		return nil, errs.Image.New(
			"unsupported image version %d, want %d", img.Version, ImageVersion)
	}
	if img.Program == nil {
		return nil, errs.Image.New("image has no program")
	}

	for i, inst := range img.Program.Instructions {
		n := inst.Op.Arity()
		if n < 0 {
			return nil, errs.Image.New("instruction %d: Unknown operation %s", i, inst.Op)
		}
		if len(inst.Operands) != n {
			return nil, errs.Image.New(
				"instruction %d: %s has %d operands, want %d",
				i, inst.Op, len(inst.Operands), n)
		}
	}

	return img.Program, nil
}

// LoadAny loads either a program image or assembly source.
func LoadAny(r io.Reader, opts Options) (*Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.HostFault.Wrap(err, "read program")
	}

	if IsImage(data) {
		return decodeImage(data)
	}
	return Load(bytes.NewReader(data), opts)
}
