package project

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/janhubicka/colorscreen"
	"github.com/janhubicka/colorscreen/screen"
	"github.com/janhubicka/colorscreen/solver"
)

const headerLine = "screen_alignment_version: 1"

// newParseError builds the shared colorscreen.ParseError (§7), folding
// the offending line number into its message since that type carries no
// line field of its own.
func newParseError(lineNo int, message string) error {
	return &colorscreen.ParseError{Message: fmt.Sprintf("line %d: %s", lineNo, message)}
}

// ParseCSP reads a CSP project file (§4.K,§6). Legacy files produced by
// older tools sometimes aren't valid UTF-8; when the raw bytes fail a
// UTF-8 check, they are transcoded from Latin-1 before scanning, the
// tolerant-decoding behavior §6 asks for. Parsing is otherwise strict:
// an unrecognized keyword, a value with the wrong number of fields, or
// a malformed number is a hard ParseError.
func ParseCSP(r io.Reader) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("project: reading CSP: %w", err)
	}
	if !utf8.Valid(raw) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, fmt.Errorf("project: transcoding legacy CSP bytes: %w", err)
		}
		raw = decoded
	}

	scanner := bufio.NewScanner(strings.NewReader(string(raw)))
	lineNo := 0
	if !scanner.Scan() {
		return nil, newParseError(1, "empty file")
	}
	lineNo++
	if scanner.Text() != headerLine {
		return nil, newParseError(lineNo, "first line must be \"" + headerLine + "\"")
	}

	doc := Default(screen.Random)
	doc.ControlPoints = nil
	var currentTile *StitchImageRecord

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			return nil, newParseError(lineNo, "blank line not allowed")
		}
		keyword, fields, err := splitLine(line, lineNo)
		if err != nil {
			return nil, err
		}

		switch keyword {
		case "stitch_image_filename":
			if err := expect(fields, 1, lineNo, keyword); err != nil {
				return nil, err
			}
			doc.StitchTiles = append(doc.StitchTiles, StitchImageRecord{Filename: fields[0]})
			currentTile = &doc.StitchTiles[len(doc.StitchTiles)-1]
			continue
		case "stitch_image_angle", "stitch_image_ratio", "stitch_image_position",
			"stitch_image_size", "stitch_image_scr_size", "stitch_image_scr_shift":
			if currentTile == nil {
				return nil, newParseError(lineNo, keyword + " before stitch_image_filename")
			}
			if err := parseStitchField(currentTile, keyword, fields, lineNo); err != nil {
				return nil, err
			}
			continue
		case "control_point":
			cp, err := parseControlPoint(fields, lineNo)
			if err != nil {
				return nil, err
			}
			doc.ControlPoints = append(doc.ControlPoints, cp)
			continue
		}

		if err := parseScalarField(&doc, keyword, fields, lineNo); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("project: scanning CSP: %w", err)
	}
	return &doc, nil
}

func splitLine(line string, lineNo int) (keyword string, fields []string, err error) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return "", nil, newParseError(lineNo, "missing ':' separator")
	}
	keyword = line[:idx]
	rest := strings.TrimRight(line[idx+1:], " \t")
	for i := 0; i < len(rest); i++ {
		if rest[i] != ' ' && rest[i] != '\t' {
			rest = rest[i:]
			break
		}
	}
	fields = strings.Fields(rest)
	return keyword, fields, nil
}

func expect(fields []string, n, lineNo int, keyword string) error {
	if len(fields) != n {
		return newParseError(lineNo, fmt.Sprintf("%s: expected %d field(s), got %d", keyword, n, len(fields)))
	}
	return nil
}

func parseFloat(s string, lineNo int, keyword string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, newParseError(lineNo, keyword + ": " + err.Error())
	}
	return v, nil
}

func parseVec2(fields []string, lineNo int, keyword string) (colorscreen.Vec2, error) {
	if err := expect(fields, 2, lineNo, keyword); err != nil {
		return colorscreen.Vec2{}, err
	}
	x, err := parseFloat(fields[0], lineNo, keyword)
	if err != nil {
		return colorscreen.Vec2{}, err
	}
	y, err := parseFloat(fields[1], lineNo, keyword)
	if err != nil {
		return colorscreen.Vec2{}, err
	}
	return colorscreen.Vec2{X: x, Y: y}, nil
}

func parseBool(fields []string, lineNo int, keyword string) (bool, error) {
	if err := expect(fields, 1, lineNo, keyword); err != nil {
		return false, err
	}
	switch fields[0] {
	case "0":
		return false, nil
	case "1":
		return true, nil
	default:
		return false, newParseError(lineNo, keyword + ": expected 0 or 1")
	}
}

func parseStitchField(t *StitchImageRecord, keyword string, fields []string, lineNo int) error {
	var err error
	switch keyword {
	case "stitch_image_angle":
		if err = expect(fields, 1, lineNo, keyword); err != nil {
			return err
		}
		t.Angle, err = parseFloat(fields[0], lineNo, keyword)
	case "stitch_image_ratio":
		if err = expect(fields, 1, lineNo, keyword); err != nil {
			return err
		}
		t.Ratio, err = parseFloat(fields[0], lineNo, keyword)
	case "stitch_image_position":
		t.Position, err = parseVec2(fields, lineNo, keyword)
	case "stitch_image_size":
		t.Size, err = parseVec2(fields, lineNo, keyword)
	case "stitch_image_scr_size":
		t.ScrSize, err = parseVec2(fields, lineNo, keyword)
	case "stitch_image_scr_shift":
		t.ScrShift, err = parseVec2(fields, lineNo, keyword)
	}
	return err
}

func parseControlPoint(fields []string, lineNo int) (solver.ControlPoint, error) {
	if err := expect(fields, 6, lineNo, "control_point"); err != nil {
		return solver.ControlPoint{}, err
	}
	vals := make([]float64, 4)
	for i := 0; i < 4; i++ {
		v, err := parseFloat(fields[i], lineNo, "control_point")
		if err != nil {
			return solver.ControlPoint{}, err
		}
		vals[i] = v
	}
	tagN, err := strconv.Atoi(fields[4])
	if err != nil {
		return solver.ControlPoint{}, newParseError(lineNo, "control_point: bad tag: " + err.Error())
	}
	locked, err := parseBool(fields[5:], lineNo, "control_point")
	if err != nil {
		return solver.ControlPoint{}, err
	}
	return solver.ControlPoint{
		ImagePoint:  colorscreen.Point{X: vals[0], Y: vals[1]},
		ScreenPoint: colorscreen.Point{X: vals[2], Y: vals[3]},
		Tag:         solver.Tag(tagN),
		Locked:      locked,
	}, nil
}

// parseScalarField handles every keyword that isn't a stitch_image_* or
// control_point record.
func parseScalarField(doc *Document, keyword string, fields []string, lineNo int) error {
	var err error
	switch keyword {
	case "screen_type":
		if err = expect(fields, 1, lineNo, keyword); err != nil {
			return err
		}
		t, ok := screenTypeByName(fields[0])
		if !ok {
			return newParseError(lineNo, "screen_type: unrecognized " + fields[0])
		}
		doc.ScreenType = t
	case "screen_shift":
		doc.ScreenShift, err = parseVec2(fields, lineNo, keyword)
	case "coordinate_x":
		doc.Coordinate1, err = parseVec2(fields, lineNo, keyword)
	case "coordinate_y":
		doc.Coordinate2, err = parseVec2(fields, lineNo, keyword)
	case "tilt_x":
		doc.TiltX, err = parseVec2(fields, lineNo, keyword)
	case "tilt_y":
		doc.TiltY, err = parseVec2(fields, lineNo, keyword)
	case "k1":
		if err = expect(fields, 1, lineNo, keyword); err != nil {
			return err
		}
		doc.K1, err = parseFloat(fields[0], lineNo, keyword)
	case "gamma":
		if err = expect(fields, 1, lineNo, keyword); err != nil {
			return err
		}
		doc.Gamma, err = parseFloat(fields[0], lineNo, keyword)
	case "presaturation":
		doc.Presaturation, err = parseColorMatrix(fields, lineNo, keyword)
	case "saturation":
		if err = expect(fields, 1, lineNo, keyword); err != nil {
			return err
		}
		doc.Saturation, err = parseFloat(fields[0], lineNo, keyword)
	case "brightness":
		if err = expect(fields, 1, lineNo, keyword); err != nil {
			return err
		}
		doc.Brightness, err = parseFloat(fields[0], lineNo, keyword)
	case "scren_blur_radius", "screen_blur_radius":
		if err = expect(fields, 1, lineNo, keyword); err != nil {
			return err
		}
		doc.ScreenBlurRadius, err = parseFloat(fields[0], lineNo, keyword)
	case "gray_range":
		if err = expect(fields, 2, lineNo, keyword); err != nil {
			return err
		}
		lo, err1 := strconv.Atoi(fields[0])
		hi, err2 := strconv.Atoi(fields[1])
		if err1 != nil || err2 != nil {
			return newParseError(lineNo, "gray_range: expected two integers")
		}
		doc.GrayMin, doc.GrayMax = lo, hi
	case "precise":
		doc.Precise, err = parseBool(fields, lineNo, keyword)
	case "screen_compensation":
		doc.ScreenCompensation, err = parseBool(fields, lineNo, keyword)
	case "adjust_luminosity":
		doc.AdjustLuminosity, err = parseBool(fields, lineNo, keyword)
	case "mix_gamma":
		if err = expect(fields, 1, lineNo, keyword); err != nil {
			return err
		}
		doc.MixGamma, err = parseFloat(fields[0], lineNo, keyword)
	case "mix_weights":
		doc.MixWeights, err = parseRgb(fields, lineNo, keyword)
	case "detect_black":
		doc.Detector.Black, err = parseRgb(fields, lineNo, keyword)
	case "detect_red":
		doc.Detector.Red, err = parseRgb(fields, lineNo, keyword)
	case "detect_green":
		doc.Detector.Green, err = parseRgb(fields, lineNo, keyword)
	case "detect_blue":
		doc.Detector.Blue, err = parseRgb(fields, lineNo, keyword)
	case "detect_gamma":
		if err = expect(fields, 1, lineNo, keyword); err != nil {
			return err
		}
		doc.Detector.Gamma, err = parseFloat(fields[0], lineNo, keyword)
	case "detect_min_patch_area":
		if err = expect(fields, 1, lineNo, keyword); err != nil {
			return err
		}
		n, perr := strconv.Atoi(fields[0])
		if perr != nil {
			return newParseError(lineNo, "detect_min_patch_area: " + perr.Error())
		}
		doc.Detector.MinPatchArea = n
	case "detect_border":
		if err = expect(fields, 2, lineNo, keyword); err != nil {
			return err
		}
		x, err1 := strconv.Atoi(fields[0])
		y, err2 := strconv.Atoi(fields[1])
		if err1 != nil || err2 != nil {
			return newParseError(lineNo, "detect_border: expected two integers")
		}
		doc.Detector.BorderX, doc.Detector.BorderY = x, y
	case "detect_alternate_overlap_metric":
		doc.Detector.UseAlternateOverlapMetric, err = parseBool(fields, lineNo, keyword)
	default:
		return newParseError(lineNo, "unknown keyword " + keyword)
	}
	return err
}

func parseRgb(fields []string, lineNo int, keyword string) (colorscreen.Rgb, error) {
	if err := expect(fields, 3, lineNo, keyword); err != nil {
		return colorscreen.Rgb{}, err
	}
	r, err := parseFloat(fields[0], lineNo, keyword)
	if err != nil {
		return colorscreen.Rgb{}, err
	}
	g, err := parseFloat(fields[1], lineNo, keyword)
	if err != nil {
		return colorscreen.Rgb{}, err
	}
	b, err := parseFloat(fields[2], lineNo, keyword)
	if err != nil {
		return colorscreen.Rgb{}, err
	}
	return colorscreen.Rgb{Red: float32(r), Green: float32(g), Blue: float32(b)}, nil
}

func parseColorMatrix(fields []string, lineNo int, keyword string) (colorscreen.ColorMatrix, error) {
	if err := expect(fields, 16, lineNo, keyword); err != nil {
		return colorscreen.ColorMatrix{}, err
	}
	var rows [4][4]float32
	for i := 0; i < 16; i++ {
		v, err := parseFloat(fields[i], lineNo, keyword)
		if err != nil {
			return colorscreen.ColorMatrix{}, err
		}
		rows[i/4][i%4] = float32(v)
	}
	return colorscreen.NewColorMatrix(rows), nil
}

var screenTypeNames = map[string]screen.Type{
	"Paget":        screen.Paget,
	"Thames":       screen.Thames,
	"Finlay":       screen.Finlay,
	"Dufay":        screen.Dufay,
	"WarnerPowrie": screen.WarnerPowrie,
	"Autochrome":   screen.Autochrome,
	"Random":       screen.Random,
	// Legacy alias (§4.K: "one legacy alias PagetFinlay -> Finlay").
	"PagetFinlay": screen.Finlay,
}

func screenTypeByName(name string) (screen.Type, bool) {
	t, ok := screenTypeNames[name]
	return t, ok
}

// WriteCSP emits doc in the canonical field order, independent of the
// order its fields were set in, so Parse -> Write -> Parse -> Write
// produces byte-identical output on the second write (§8).
func (doc *Document) WriteCSP(w io.Writer) error {
	bw := bufio.NewWriter(w)
	writeLine := func(format string, args ...any) {
		fmt.Fprintf(bw, format+"\n", args...)
	}

	writeLine(headerLine)
	writeLine("screen_type: %s", csbScreenTypeName(doc.ScreenType))
	writeLine("screen_shift: %s", fmtVec2(doc.ScreenShift))
	writeLine("coordinate_x: %s", fmtVec2(doc.Coordinate1))
	writeLine("coordinate_y: %s", fmtVec2(doc.Coordinate2))
	writeLine("tilt_x: %s", fmtVec2(doc.TiltX))
	writeLine("tilt_y: %s", fmtVec2(doc.TiltY))
	writeLine("k1: %s", fmtFloat(doc.K1))
	writeLine("gamma: %s", fmtFloat(doc.Gamma))
	writeLine("presaturation: %s", fmtColorMatrix(doc.Presaturation))
	writeLine("saturation: %s", fmtFloat(doc.Saturation))
	writeLine("brightness: %s", fmtFloat(doc.Brightness))
	writeLine("scren_blur_radius: %s", fmtFloat(doc.ScreenBlurRadius))
	writeLine("gray_range: %d %d", doc.GrayMin, doc.GrayMax)
	writeLine("precise: %s", fmtBool(doc.Precise))
	writeLine("screen_compensation: %s", fmtBool(doc.ScreenCompensation))
	writeLine("adjust_luminosity: %s", fmtBool(doc.AdjustLuminosity))
	writeLine("mix_gamma: %s", fmtFloat(doc.MixGamma))
	writeLine("mix_weights: %s", fmtRgb(doc.MixWeights))

	writeLine("detect_black: %s", fmtRgb(doc.Detector.Black))
	writeLine("detect_red: %s", fmtRgb(doc.Detector.Red))
	writeLine("detect_green: %s", fmtRgb(doc.Detector.Green))
	writeLine("detect_blue: %s", fmtRgb(doc.Detector.Blue))
	writeLine("detect_gamma: %s", fmtFloat(doc.Detector.Gamma))
	writeLine("detect_min_patch_area: %d", doc.Detector.MinPatchArea)
	writeLine("detect_border: %d %d", doc.Detector.BorderX, doc.Detector.BorderY)
	writeLine("detect_alternate_overlap_metric: %s", fmtBool(doc.Detector.UseAlternateOverlapMetric))

	for _, cp := range doc.ControlPoints {
		writeLine("control_point: %s %s %s %s %d %s",
			fmtFloat(cp.ImagePoint.X), fmtFloat(cp.ImagePoint.Y),
			fmtFloat(cp.ScreenPoint.X), fmtFloat(cp.ScreenPoint.Y),
			int(cp.Tag), fmtBool(cp.Locked))
	}

	for _, tile := range doc.StitchTiles {
		writeLine("stitch_image_filename: %s", tile.Filename)
		writeLine("stitch_image_angle: %s", fmtFloat(tile.Angle))
		writeLine("stitch_image_ratio: %s", fmtFloat(tile.Ratio))
		writeLine("stitch_image_position: %s", fmtVec2(tile.Position))
		writeLine("stitch_image_size: %s", fmtVec2(tile.Size))
		writeLine("stitch_image_scr_size: %s", fmtVec2(tile.ScrSize))
		writeLine("stitch_image_scr_shift: %s", fmtVec2(tile.ScrShift))
	}

	return bw.Flush()
}

func csbScreenTypeName(t screen.Type) string { return t.String() }

func fmtFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func fmtVec2(v colorscreen.Vec2) string { return fmtFloat(v.X) + " " + fmtFloat(v.Y) }

func fmtRgb(c colorscreen.Rgb) string {
	return fmtFloat(float64(c.Red)) + " " + fmtFloat(float64(c.Green)) + " " + fmtFloat(float64(c.Blue))
}

func fmtBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func fmtColorMatrix(cm colorscreen.ColorMatrix) string {
	var b strings.Builder
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			if r != 0 || c != 0 {
				b.WriteByte(' ')
			}
			b.WriteString(fmtFloat(float64(cm.At(r, c))))
		}
	}
	return b.String()
}
