package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Khalidfayaz/kidscope-backend/internal/common"
)

// fakeRunner writes n fake pages next to the prefix argument, like pdftoppm.
type fakeRunner struct {
	pages int
	err   error
	calls [][]string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.err != nil {
		return nil, []byte("boom"), f.err
	}
	if name == "pdftotext" {
		return []byte("page one\fpage two"), nil, nil
	}
	prefix := args[len(args)-1]
	for i := 1; i <= f.pages; i++ {
		p := prefix + "-" + pad(i, f.pages) + ".png"
		if err := os.WriteFile(p, []byte{byte(i)}, 0o600); err != nil {
			return nil, nil, err
		}
	}
	return nil, nil, nil
}

func pad(i, n int) string {
	s := []byte{byte('0' + i%10)}
	if i >= 10 {
		s = []byte{byte('0' + i/10), byte('0' + i%10)}
	}
	if n >= 10 && i < 10 {
		return "0" + string(s)
	}
	return string(s)
}

func TestRenderPDFOrdersPages(t *testing.T) {
	fr := &fakeRunner{pages: 11}
	r := NewRenderer(Config{}, nil).WithRunner(fr)

	pages, err := r.Render(context.Background(), "sheet.PDF", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(pages) != 11 {
		t.Fatalf("pages: want=11 got=%d", len(pages))
	}
	for i, p := range pages {
		if p.Number != i+1 || p.PNG[0] != byte(i+1) {
			t.Fatalf("page %d out of order: number=%d byte=%d", i, p.Number, p.PNG[0])
		}
	}
	args := strings.Join(fr.calls[0], " ")
	if !strings.HasPrefix(args, "pdftoppm -r 200 -png ") {
		t.Fatalf("args: got=%q", args)
	}
	// temp dir is gone
	in := fr.calls[0][len(fr.calls[0])-2]
	if _, err := os.Stat(filepath.Dir(in)); !os.IsNotExist(err) {
		t.Fatalf("temp dir not removed: %v", err)
	}
}

func TestRenderPDFMaxPages(t *testing.T) {
	fr := &fakeRunner{pages: 3}
	r := NewRenderer(Config{MaxPages: 2}, nil).WithRunner(fr)
	pages, err := r.RenderPDF(context.Background(), []byte("%PDF"))
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 2 {
		t.Fatalf("pages: want=2 got=%d", len(pages))
	}
}

func TestRenderPDFRunnerError(t *testing.T) {
	r := NewRenderer(Config{}, nil).WithRunner(&fakeRunner{err: errors.New("exit 1")})
	if _, err := r.RenderPDF(context.Background(), []byte("x")); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("want pdftoppm error with stderr, got=%v", err)
	}
}

func TestRenderImageReencodesToPNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var jb bytes.Buffer
	if err := jpeg.Encode(&jb, img, nil); err != nil {
		t.Fatal(err)
	}

	r := NewRenderer(Config{}, nil)
	pages, err := r.Render(context.Background(), "photo.jpg", jb.Bytes())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(pages) != 1 || pages[0].Number != 1 {
		t.Fatalf("pages: got=%+v", pages)
	}
	if _, err := png.Decode(bytes.NewReader(pages[0].PNG)); err != nil {
		t.Fatalf("not png: %v", err)
	}
}

func TestRenderImageDecodeError(t *testing.T) {
	r := NewRenderer(Config{}, nil)
	_, err := r.Render(context.Background(), "bad.png", []byte("not an image"))
	if err == nil {
		t.Fatal("want error")
	}
	if msg := common.PublicMessage(err); !strings.HasPrefix(msg, "Image error: ") {
		t.Fatalf("message: got=%q", msg)
	}
	if common.HTTPStatus(err) != 500 {
		t.Fatalf("status: want=500 got=%d", common.HTTPStatus(err))
	}
}

func TestRenderUnsupported(t *testing.T) {
	r := NewRenderer(Config{}, nil)
	_, err := r.Render(context.Background(), "marks.csv", nil)
	if !errors.Is(err, common.ErrUnsupported) {
		t.Fatalf("want ErrUnsupported got=%v", err)
	}
	// unknown extensions are tried as images
	_, err = r.Render(context.Background(), "notes.docx", []byte("PK"))
	if !strings.HasPrefix(common.PublicMessage(err), "Image error: ") {
		t.Fatalf("unknown ext: got=%v", err)
	}
}

func TestPDFText(t *testing.T) {
	r := NewRenderer(Config{}, nil).WithRunner(&fakeRunner{})
	txt, err := r.PDFText(context.Background(), "/tmp/x.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(txt, "\f") != 1 {
		t.Fatalf("text: got=%q", txt)
	}
}
