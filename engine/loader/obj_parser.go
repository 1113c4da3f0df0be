package loader

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/kanvas-go/engine/model"
)

// objDocument is the parsed form of a Wavefront OBJ file: the mesh groups it
// defines and the material libraries it references.
type objDocument struct {
	// MaterialLibs lists mtllib references in declaration order.
	MaterialLibs []string

	// Meshes are the parsed groups, one per object/material run.
	Meshes []model.ImportedMesh

	// MaterialNames holds the usemtl name per mesh, parallel to Meshes.
	// Empty string means the group declared no material.
	MaterialNames []string
}

// faceKey identifies one position/texcoord/normal triplet for vertex dedup.
// Indices are zero-based after resolution; -1 marks an absent component.
type faceKey struct {
	position int
	texcoord int
	normal   int
}

// objMeshBuilder accumulates one mesh group's deduplicated vertices.
type objMeshBuilder struct {
	name         string
	materialName string

	vertices []model.GPUModelVertex
	indices  []uint32
	lookup   map[faceKey]uint32

	min [3]float32
	max [3]float32
}

func newOBJMeshBuilder(name, materialName string) *objMeshBuilder {
	return &objMeshBuilder{
		name:         name,
		materialName: materialName,
		lookup:       make(map[faceKey]uint32),
		min:          [3]float32{float32(math.Inf(1)), float32(math.Inf(1)), float32(math.Inf(1))},
		max:          [3]float32{float32(math.Inf(-1)), float32(math.Inf(-1)), float32(math.Inf(-1))},
	}
}

// objParser holds the shared attribute pools and the mesh group in progress.
type objParser struct {
	positions [][3]float32
	texcoords [][2]float32
	normals   [][3]float32

	doc     *objDocument
	current *objMeshBuilder
}

// parseOBJ reads a Wavefront OBJ stream into its mesh groups. Faces with more
// than three vertices are triangulated as fans, negative indices resolve
// relative to the end of the attribute pools, and the texture v coordinate is
// flipped so v grows downward to match image row order.
//
// Parameters:
//   - r: the OBJ text stream
//
// Returns:
//   - *objDocument: the parsed meshes and material references
//   - error: error when the stream is malformed
func parseOBJ(r io.Reader) (*objDocument, error) {
	p := &objParser{doc: &objDocument{}}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		keyword, args := fields[0], fields[1:]

		var err error
		switch keyword {
		case "v":
			err = p.parsePosition(args)
		case "vt":
			err = p.parseTexCoord(args)
		case "vn":
			err = p.parseNormal(args)
		case "f":
			err = p.parseFace(args)
		case "o", "g":
			p.startMesh(strings.Join(args, " "), p.currentMaterial())
		case "usemtl":
			if len(args) > 0 {
				p.switchMaterial(args[0])
			}
		case "mtllib":
			p.doc.MaterialLibs = append(p.doc.MaterialLibs, args...)
		}
		if err != nil {
			return nil, fmt.Errorf("obj line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read obj stream: %w", err)
	}

	p.flushMesh()
	if len(p.doc.Meshes) == 0 {
		return nil, fmt.Errorf("obj stream contains no faces")
	}
	return p.doc, nil
}

func (p *objParser) currentMaterial() string {
	if p.current == nil {
		return ""
	}
	return p.current.materialName
}

// startMesh flushes the group in progress and opens a new one.
func (p *objParser) startMesh(name, materialName string) {
	p.flushMesh()
	if name == "" {
		name = fmt.Sprintf("mesh_%d", len(p.doc.Meshes))
	}
	p.current = newOBJMeshBuilder(name, materialName)
}

// switchMaterial starts a new group when the active one already holds faces,
// since a mesh maps to exactly one material.
func (p *objParser) switchMaterial(materialName string) {
	if p.current == nil || len(p.current.indices) > 0 {
		name := fmt.Sprintf("mesh_%d", len(p.doc.Meshes))
		if p.current != nil {
			name = p.current.name
		}
		p.startMesh(name, materialName)
		return
	}
	p.current.materialName = materialName
}

func (p *objParser) flushMesh() {
	if p.current == nil || len(p.current.indices) == 0 {
		p.current = nil
		return
	}
	b := p.current
	p.doc.Meshes = append(p.doc.Meshes, model.ImportedMesh{
		Name:        b.name,
		Vertices:    b.vertices,
		Indices:     b.indices,
		BoundingMin: b.min,
		BoundingMax: b.max,
	})
	p.doc.MaterialNames = append(p.doc.MaterialNames, b.materialName)
	p.current = nil
}

func (p *objParser) parsePosition(args []string) error {
	v, err := parseFloats(args, 3)
	if err != nil {
		return fmt.Errorf("invalid v directive: %w", err)
	}
	p.positions = append(p.positions, [3]float32{v[0], v[1], v[2]})
	return nil
}

func (p *objParser) parseTexCoord(args []string) error {
	v, err := parseFloats(args, 2)
	if err != nil {
		return fmt.Errorf("invalid vt directive: %w", err)
	}
	// obj uses a bottom-left origin; textures sample top-down
	p.texcoords = append(p.texcoords, [2]float32{v[0], 1 - v[1]})
	return nil
}

func (p *objParser) parseNormal(args []string) error {
	v, err := parseFloats(args, 3)
	if err != nil {
		return fmt.Errorf("invalid vn directive: %w", err)
	}
	p.normals = append(p.normals, [3]float32{v[0], v[1], v[2]})
	return nil
}

func (p *objParser) parseFace(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("face needs at least 3 vertices, got %d", len(args))
	}
	if p.current == nil {
		p.startMesh("", "")
	}

	corners := make([]uint32, len(args))
	for i, token := range args {
		idx, err := p.resolveVertex(token)
		if err != nil {
			return err
		}
		corners[i] = idx
	}

	// fan triangulation for quads and n-gons
	for i := 1; i+1 < len(corners); i++ {
		p.current.indices = append(p.current.indices, corners[0], corners[i], corners[i+1])
	}
	return nil
}

// resolveVertex parses one face corner token (v, v/vt, v//vn, or v/vt/vn)
// and returns its deduplicated index in the current mesh.
func (p *objParser) resolveVertex(token string) (uint32, error) {
	parts := strings.Split(token, "/")
	if len(parts) > 3 {
		return 0, fmt.Errorf("malformed face corner %q", token)
	}

	key := faceKey{position: -1, texcoord: -1, normal: -1}
	var err error
	if key.position, err = resolveIndex(parts[0], len(p.positions)); err != nil {
		return 0, fmt.Errorf("face corner %q: %w", token, err)
	}
	if len(parts) > 1 && parts[1] != "" {
		if key.texcoord, err = resolveIndex(parts[1], len(p.texcoords)); err != nil {
			return 0, fmt.Errorf("face corner %q: %w", token, err)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if key.normal, err = resolveIndex(parts[2], len(p.normals)); err != nil {
			return 0, fmt.Errorf("face corner %q: %w", token, err)
		}
	}

	b := p.current
	if idx, ok := b.lookup[key]; ok {
		return idx, nil
	}

	var vert model.GPUModelVertex
	vert.Position = p.positions[key.position]
	if key.texcoord >= 0 {
		vert.TexCoord = p.texcoords[key.texcoord]
	}
	if key.normal >= 0 {
		vert.Normal = p.normals[key.normal]
	}

	for k := 0; k < 3; k++ {
		if vert.Position[k] < b.min[k] {
			b.min[k] = vert.Position[k]
		}
		if vert.Position[k] > b.max[k] {
			b.max[k] = vert.Position[k]
		}
	}

	idx := uint32(len(b.vertices))
	b.vertices = append(b.vertices, vert)
	b.lookup[key] = idx
	return idx, nil
}

// resolveIndex converts a one-based obj index (negative counts back from the
// end of the pool) to a zero-based index.
func resolveIndex(s string, poolLen int) (int, error) {
	raw, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", s)
	}
	idx := raw - 1
	if raw < 0 {
		idx = poolLen + raw
	}
	if idx < 0 || idx >= poolLen {
		return 0, fmt.Errorf("index %d out of range (pool size %d)", raw, poolLen)
	}
	return idx, nil
}

func parseFloats(args []string, n int) ([]float32, error) {
	if len(args) < n {
		return nil, fmt.Errorf("expected %d components, got %d", n, len(args))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(args[i], 32)
		if err != nil {
			return nil, fmt.Errorf("invalid float %q", args[i])
		}
		out[i] = float32(f)
	}
	return out, nil
}
