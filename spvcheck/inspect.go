package spvcheck

import (
	"fmt"
	"strings"
)

const (
	opEntryPoint = 15
	opCapability = 17
)

var executionModels = map[uint32]string{
	0: "Vertex", 1: "TessellationControl", 2: "TessellationEvaluation",
	3: "Geometry", 4: "Fragment", 5: "GLCompute", 6: "Kernel",
}

var capabilities = map[uint32]string{
	0: "Matrix", 1: "Shader", 2: "Geometry", 3: "Tessellation",
	4: "Addresses", 5: "Linkage", 6: "Kernel", 9: "Float16",
	10: "Float64", 11: "Int64", 22: "Int16", 39: "Int8",
	49: "ImageQuery", 50: "DerivativeControl", 56: "MultiViewport",
	4427: "DrawParameters", 4442: "MultiView",
}

// EntryPoint is an OpEntryPoint declared by a module.
type EntryPoint struct {
	Model string
	Name  string
}

// Info summarizes a module.
type Info struct {
	Header       Header
	Instructions int
	Capabilities []string
	EntryPoints  []EntryPoint
}

// Inspect decodes the header of data and walks its instruction stream.
func Inspect(data []byte) (Info, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return Info{}, err
	}
	info := Info{Header: h}

	for offset := HeaderSize; offset < len(data); {
		if offset+4 > len(data) {
			return info, fmt.Errorf("spirv: truncated instruction at offset 0x%X", offset)
		}
		word := h.Order.Uint32(data[offset:])
		opcode := word & 0xFFFF
		wordCount := int(word >> 16)
		if wordCount == 0 || offset+wordCount*4 > len(data) {
			return info, fmt.Errorf("spirv: invalid word count %d at offset 0x%X", wordCount, offset)
		}

		switch opcode {
		case opCapability:
			if wordCount >= 2 {
				info.Capabilities = append(info.Capabilities, lookup(capabilities, h.Order.Uint32(data[offset+4:])))
			}
		case opEntryPoint:
			// model, function id, literal name
			if wordCount >= 4 {
				model := h.Order.Uint32(data[offset+4:])
				name := readString(data[offset+12 : offset+wordCount*4])
				info.EntryPoints = append(info.EntryPoints, EntryPoint{
					Model: lookup(executionModels, model),
					Name:  name,
				})
			}
		}

		info.Instructions++
		offset += wordCount * 4
	}
	return info, nil
}

// readString decodes a nul-terminated literal string.
func readString(data []byte) string {
	var sb strings.Builder
	for _, b := range data {
		if b == 0 {
			break
		}
		sb.WriteByte(b)
	}
	return sb.String()
}

func lookup(m map[uint32]string, v uint32) string {
	if s, ok := m[v]; ok {
		return s
	}
	return fmt.Sprintf("%d", v)
}
