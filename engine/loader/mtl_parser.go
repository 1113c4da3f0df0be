package loader

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/Carmen-Shannon/kanvas-go/common"
)

// parseMTL reads a Wavefront material library stream. Only the directives the
// lit pipeline consumes are extracted: diffuse color, dissolve, and the
// diffuse and normal map references. Texture paths are returned as written in
// the file; the backend resolves them against the model's directory.
//
// Parameters:
//   - r: the MTL text stream
//
// Returns:
//   - []common.ImportedMaterial: materials in declaration order
//   - error: error when the stream is malformed
func parseMTL(r io.Reader) ([]common.ImportedMaterial, error) {
	var materials []common.ImportedMaterial
	var current *common.ImportedMaterial

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		keyword, args := fields[0], fields[1:]

		if keyword == "newmtl" {
			if len(args) == 0 {
				return nil, fmt.Errorf("mtl line %d: newmtl without a name", lineNo)
			}
			materials = append(materials, common.ImportedMaterial{
				Name:      args[0],
				BaseColor: [4]float32{1, 1, 1, 1},
			})
			current = &materials[len(materials)-1]
			continue
		}
		if current == nil {
			continue
		}

		switch keyword {
		case "Kd":
			rgb, err := parseFloats(args, 3)
			if err != nil {
				return nil, fmt.Errorf("mtl line %d: invalid Kd: %w", lineNo, err)
			}
			current.BaseColor[0] = rgb[0]
			current.BaseColor[1] = rgb[1]
			current.BaseColor[2] = rgb[2]
		case "d":
			a, err := parseFloats(args, 1)
			if err != nil {
				return nil, fmt.Errorf("mtl line %d: invalid d: %w", lineNo, err)
			}
			current.BaseColor[3] = a[0]
		case "Tr":
			// inverted dissolve
			a, err := parseFloats(args, 1)
			if err != nil {
				return nil, fmt.Errorf("mtl line %d: invalid Tr: %w", lineNo, err)
			}
			current.BaseColor[3] = 1 - a[0]
		case "map_Kd":
			current.DiffuseTexturePath = textureArg(args)
		case "map_Bump", "map_bump", "bump", "norm":
			current.NormalTexturePath = textureArg(args)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read mtl stream: %w", err)
	}

	return materials, nil
}

// textureArg returns the filename from a texture map directive. Options and
// their values precede the filename, so the last token is the path.
func textureArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[len(args)-1]
}
