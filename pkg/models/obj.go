package models

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/trophy/pkg/math3d"
)

// objIndex identifies one vertex/uv/normal triple referenced by a face, the
// key used to deduplicate OBJ's independently-indexed attribute streams
// into Mesh's single combined-vertex stream.
type objIndex struct {
	v, vt, vn int
}

// LoadOBJ loads a Wavefront OBJ file into a Mesh. It supports v/vt/vn
// positions, texture coordinates, and normals, and triangulates polygonal
// faces with more than three vertices via a fan from the first vertex.
// Only geometry is read: materials (mtllib/usemtl) are ignored, matching
// the package's texture handling elsewhere (textures are supplied
// separately by the caller).
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	var positions []math3d.Vec3
	var texcoords []math3d.Vec2
	var normals []math3d.Vec3

	mesh := NewMesh(filepath.Base(path))
	seen := make(map[objIndex]int)

	vertexFor := func(idx objIndex) (int, error) {
		if i, ok := seen[idx]; ok {
			return i, nil
		}
		if idx.v < 0 || idx.v >= len(positions) {
			return 0, fmt.Errorf("face vertex index %d out of range (have %d positions)", idx.v+1, len(positions))
		}
		mv := MeshVertex{Position: positions[idx.v]}
		if idx.vt >= 0 && idx.vt < len(texcoords) {
			mv.UV = texcoords[idx.vt]
		}
		if idx.vn >= 0 && idx.vn < len(normals) {
			mv.Normal = normals[idx.vn]
		}
		i := len(mesh.Vertices)
		mesh.Vertices = append(mesh.Vertices, mv)
		seen[idx] = i
		return i, nil
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			p, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("obj line %d: %w", lineNo, err)
			}
			positions = append(positions, p)
		case "vt":
			if len(fields) < 3 {
				return nil, fmt.Errorf("obj line %d: vt needs 2 components", lineNo)
			}
			u, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, fmt.Errorf("obj line %d: %w", lineNo, err)
			}
			v, err := strconv.ParseFloat(fields[2], 64)
			if err != nil {
				return nil, fmt.Errorf("obj line %d: %w", lineNo, err)
			}
			texcoords = append(texcoords, math3d.V2(u, v))
		case "vn":
			n, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("obj line %d: %w", lineNo, err)
			}
			normals = append(normals, n.Normalize())
		case "f":
			idxs := make([]objIndex, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				idx, err := parseFaceToken(tok, len(positions), len(texcoords), len(normals))
				if err != nil {
					return nil, fmt.Errorf("obj line %d: %w", lineNo, err)
				}
				idxs = append(idxs, idx)
			}
			for i := 1; i < len(idxs)-1; i++ {
				v0, err := vertexFor(idxs[0])
				if err != nil {
					return nil, err
				}
				v1, err := vertexFor(idxs[i])
				if err != nil {
					return nil, err
				}
				v2, err := vertexFor(idxs[i+1])
				if err != nil {
					return nil, err
				}
				mesh.Faces = append(mesh.Faces, Face{V: [3]int{v0, v1, v2}})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	hasNormals := false
	for _, v := range mesh.Vertices {
		if v.Normal.LenSq() > 1e-9 {
			hasNormals = true
			break
		}
	}
	if !hasNormals {
		mesh.CalculateSmoothNormals()
	}

	mesh.CalculateBounds()
	return mesh, nil
}

func parseVec3(fields []string) (math3d.Vec3, error) {
	if len(fields) < 3 {
		return math3d.Vec3{}, fmt.Errorf("need 3 components, got %d", len(fields))
	}
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return math3d.Vec3{}, err
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return math3d.Vec3{}, err
	}
	z, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return math3d.Vec3{}, err
	}
	return math3d.V3(x, y, z), nil
}

// parseFaceToken parses one "v", "v/vt", "v//vn", or "v/vt/vn" face
// reference. OBJ indices are 1-based and may be negative (relative to the
// end of the list so far); both are normalized to 0-based here.
func parseFaceToken(tok string, nv, nvt, nvn int) (objIndex, error) {
	parts := strings.Split(tok, "/")
	idx := objIndex{v: -1, vt: -1, vn: -1}

	resolve := func(s string, count int) (int, error) {
		if s == "" {
			return -1, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return -1, fmt.Errorf("bad face index %q: %w", s, err)
		}
		if n < 0 {
			n = count + n
		} else {
			n--
		}
		return n, nil
	}

	var err error
	if idx.v, err = resolve(parts[0], nv); err != nil {
		return idx, err
	}
	if len(parts) > 1 {
		if idx.vt, err = resolve(parts[1], nvt); err != nil {
			return idx, err
		}
	}
	if len(parts) > 2 {
		if idx.vn, err = resolve(parts[2], nvn); err != nil {
			return idx, err
		}
	}
	return idx, nil
}
