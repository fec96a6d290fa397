package certificate

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"community-events/internal/core/config"
	"community-events/internal/domain"
)

func testInput() Input {
	return Input{
		ID:            "c0ffee",
		UserName:      "Ada Lovelace",
		EventName:     "Programación concurrente en Go",
		EventDate:     time.Date(2024, 3, 9, 18, 0, 0, 0, time.UTC),
		PresenterID:   "p1",
		PresenterName: "Rob Pike",
	}
}

func newTestRenderer(t *testing.T, a *Assets) *Renderer {
	t.Helper()
	r, err := NewRenderer("cudicoders.dev", a)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestMonthYear(t *testing.T) {
	cases := map[time.Month]string{
		time.January:   "Enero, 2024",
		time.September: "Septiembre, 2024",
		time.December:  "Diciembre, 2024",
	}
	for m, want := range cases {
		if got := MonthYear(time.Date(2024, m, 15, 0, 0, 0, 0, time.UTC)); got != want {
			t.Errorf("MonthYear(%v) = %q, want %q", m, got, want)
		}
	}
}

func TestSplitLine(t *testing.T) {
	cases := []struct {
		in            string
		width         float64
		first, second string
	}{
		{"short", 100, "short", ""},
		{"one two three four five", 700, "one two", "three four five"},
		{"a b", 623, "a", "b"},
		{"Supercalifragilistic", 900, "Supercalifragilistic", ""},
		{"exactly at limit", 622, "exactly at limit", ""},
	}
	for _, tc := range cases {
		f, s := SplitLine(tc.in, tc.width)
		if f != tc.first || s != tc.second {
			t.Errorf("SplitLine(%q, %v) = %q, %q", tc.in, tc.width, f, s)
		}
	}
}

func TestRender_IsDeterministic(t *testing.T) {
	r := newTestRenderer(t, nil)
	a, err := r.PNG(testInput())
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.PNG(testInput())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("identical input rendered different bytes")
	}

	other := testInput()
	other.ID = "beef"
	c, _ := r.PNG(other)
	if bytes.Equal(a, c) {
		t.Fatal("different certificate id should change the QR payload")
	}

	pa, err := r.PDF(testInput())
	if err != nil {
		t.Fatal(err)
	}
	pb, _ := r.PDF(testInput())
	if !bytes.Equal(pa, pb) {
		t.Fatal("pdf output not reproducible")
	}
	if !bytes.HasPrefix(pa, []byte("%PDF-")) {
		t.Fatalf("not a pdf: %q", pa[:8])
	}
}

func TestRender_KeepsTemplateSizeAndDrawsQR(t *testing.T) {
	r := newTestRenderer(t, nil)
	b, err := r.PNG(testInput())
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	if got := img.Bounds().Size(); got != image.Pt(defaultWidth, defaultHeight) {
		t.Fatalf("size = %v", got)
	}

	// 二维码区域内应有白色模块
	var white int
	x0, y0, n := px(qrX), px(qrY), px(qrSize)
	for y := y0; y < y0+n; y += 4 {
		for x := x0; x < x0+n; x += 4 {
			if rr, gg, bb, _ := img.At(x, y).RGBA(); rr == 0xffff && gg == 0xffff && bb == 0xffff {
				white++
			}
		}
	}
	if white == 0 {
		t.Fatal("no QR modules drawn")
	}
	if !strings.HasPrefix(DataURL(b), "data:image/png;base64,") {
		t.Fatal("bad data url")
	}
}

func writePNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestLoadAssets_SignatureLookupAndFallback(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "tpl.png"), 1800, 1273, color.Black)
	writePNG(t, filepath.Join(dir, "fallback.png"), 200, 100, color.RGBA{R: 255, A: 255})
	writePNG(t, filepath.Join(dir, "p1.png"), 300, 100, color.RGBA{G: 255, A: 255})

	a, err := LoadAssets(config.Certificate{
		Template:          filepath.Join(dir, "tpl.png"),
		FallbackSignature: filepath.Join(dir, "fallback.png"),
		Signatures:        map[string]string{"p1": filepath.Join(dir, "p1.png")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if a.signature("p1").Bounds().Dx() != 300 {
		t.Fatal("mapped signature not used")
	}
	if a.signature("unknown").Bounds().Dx() != 200 {
		t.Fatal("fallback signature not used")
	}

	r := newTestRenderer(t, a)
	b, err := r.PNG(testInput())
	if err != nil {
		t.Fatal(err)
	}
	img, _ := png.Decode(bytes.NewReader(b))
	if img.Bounds().Dx() != 1800 {
		t.Fatalf("template size not kept: %v", img.Bounds())
	}
	// 签名中心点是绿色
	_, g, _, _ := img.At(px(sigCenterX), px(sigBottom-sigHeight/2)).RGBA()
	if g < 0xf000 {
		t.Fatalf("signature not drawn at centre, g=%x", g)
	}

	if _, err := LoadAssets(config.Certificate{Template: filepath.Join(dir, "missing.png")}); err == nil {
		t.Fatal("missing template must fail")
	}
}

// 没配签名也要签：用内置签名
func TestRender_BuiltInSignatureWhenUnconfigured(t *testing.T) {
	a, err := LoadAssets(config.Certificate{})
	if err != nil {
		t.Fatal(err)
	}
	if a.signature("nobody") == nil {
		t.Fatal("no fallback signature")
	}

	for name, assets := range map[string]*Assets{"loaded": a, "nil": nil} {
		r := newTestRenderer(t, assets)
		b, err := r.PNG(testInput())
		if err != nil {
			t.Fatal(err)
		}
		img, _ := png.Decode(bytes.NewReader(b))
		rr, gg, bb, _ := img.At(px(sigCenterX), px(sigBottom-sigHeight/2)).RGBA()
		if rr < 0xc000 || gg < 0xc000 || bb < 0xc000 {
			t.Fatalf("%s: signature not drawn at centre, rgb=%x %x %x", name, rr, gg, bb)
		}
	}
}

func TestHashKey(t *testing.T) {
	h := HashKey("secret", "c1", "e1", "u1")
	if len(h) != 64 {
		t.Fatalf("len = %d", len(h))
	}
	if !Verify("secret", "c1", "e1", "u1", h) {
		t.Fatal("verify failed")
	}
	if Verify("secret", "c1", "e1", "u2", h) || Verify("other", "c1", "e1", "u1", h) || Verify("secret", "c1", "e1", "u1", "") {
		t.Fatal("verify must reject tampered input")
	}
	long := strings.Repeat("k", 100)
	if HashKey(long, "a", "b", "c") == "" {
		t.Fatal("long key")
	}
}

func TestInputFrom_UsesFirstPresenter(t *testing.T) {
	in := InputFrom(domain.CertificateView{
		ID:         "c1",
		User:       domain.User{Name: "Ada"},
		Event:      domain.Event{Name: "Go"},
		Presenters: []domain.User{{ID: "p1", Name: "Rob"}, {ID: "p2", Name: "Ken"}},
	})
	if in.PresenterID != "p1" || in.PresenterName != "Rob" || in.UserName != "Ada" {
		t.Fatalf("input = %+v", in)
	}
}
