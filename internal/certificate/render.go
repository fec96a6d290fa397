// Package certificate 证书渲染：模板 + 二维码 + 签名 + 文字 → PNG，再嵌入单页 PDF
package certificate

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"community-events/internal/domain"
)

// 布局以画布单位给出，实际像素 = 单位 × scale（模板 171ppi / 画布 96ppi）
const (
	scale = 171.0 / 96.0
	dpi   = 171

	qrX, qrY, qrSize = 902, 67, 160

	sigCenterX, sigBottom, sigHeight = 977, 680, 52

	wrapWidth = 622
	wrapGap   = 10

	sizeLarge  = 30.4
	sizeMedium = 12
	sizeSmall  = 9
)

var spanishMonths = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// MonthYear "Marzo, 2024"
func MonthYear(t time.Time) string {
	return fmt.Sprintf("%s, %d", spanishMonths[t.Month()-1], t.Year())
}

type Input struct {
	ID            string
	UserName      string
	EventName     string
	EventDate     time.Time
	PresenterID   string
	PresenterName string
}

// InputFrom 取第一位讲师署名
func InputFrom(v domain.CertificateView) Input {
	in := Input{
		ID:        v.ID,
		UserName:  v.User.Name,
		EventName: v.Event.Name,
		EventDate: v.Event.Date,
	}
	if len(v.Presenters) > 0 {
		in.PresenterID = v.Presenters[0].ID
		in.PresenterName = v.Presenters[0].Name
	}
	return in
}

type Renderer struct {
	domain string
	assets *Assets
	font   *opentype.Font
}

func NewRenderer(domainName string, a *Assets) (*Renderer, error) {
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	if a == nil {
		a = &Assets{Template: DefaultTemplate(), Fallback: DefaultSignature()}
	}
	return &Renderer{domain: strings.TrimSuffix(domainName, "/"), assets: a, font: f}, nil
}

// URL 证书上印的验证地址（不带协议）
func (r *Renderer) URL(id string) string { return r.domain + "/c/" + id }

func (r *Renderer) Image(in Input) (*image.RGBA, error) {
	tpl := r.assets.Template
	b := tpl.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Bounds(), tpl, b.Min, draw.Src)

	url := r.URL(in.ID)
	if err := drawQR(canvas, "https://"+url); err != nil {
		return nil, err
	}
	if sig := r.assets.signature(in.PresenterID); sig != nil {
		drawSignature(canvas, sig)
	}

	// Face 不能并发使用，每次渲染单独创建
	large, err := r.face(sizeLarge)
	if err != nil {
		return nil, err
	}
	medium, err := r.face(sizeMedium)
	if err != nil {
		return nil, err
	}
	small, err := r.face(sizeSmall)
	if err != nil {
		return nil, err
	}
	defer large.Close()
	defer medium.Close()
	defer small.Close()

	drawWrapped(canvas, large, in.UserName, 79, 339)
	drawWrapped(canvas, large, in.EventName, 79, 474)
	drawText(canvas, medium, MonthYear(in.EventDate), 79, 695)
	drawText(canvas, medium, url, 250, 695)
	drawCentered(canvas, small, in.PresenterName, 977, 684)
	return canvas, nil
}

func (r *Renderer) PNG(in Input) ([]byte, error) {
	img, err := r.Image(in)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func DataURL(pngBytes []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
}

// PDF 单页，页面尺寸等于图片像素尺寸；日期固定为活动日期，输出可重现
func (r *Renderer) PDF(in Input) ([]byte, error) {
	pngBytes, err := r.PNG(in)
	if err != nil {
		return nil, err
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(pngBytes))
	if err != nil {
		return nil, err
	}
	w, h := float64(cfg.Width), float64(cfg.Height)

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(in.EventDate)
	pdf.SetModificationDate(in.EventDate)
	pdf.SetTitle("Certificado "+in.ID, true)
	pdf.AddPage()

	opt := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("certificate", opt, bytes.NewReader(pngBytes))
	pdf.ImageOptions("certificate", 0, 0, w, h, false, opt, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) face(size float64) (font.Face, error) {
	return opentype.NewFace(r.font, &opentype.FaceOptions{Size: size, DPI: dpi, Hinting: font.HintingNone})
}

func px(units float64) int { return int(math.Round(units * scale)) }

func drawQR(dst draw.Image, content string) error {
	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("qr: %w", err)
	}
	q.DisableBorder = true
	q.ForegroundColor = color.White
	q.BackgroundColor = color.Transparent
	size := px(qrSize)
	img := q.Image(size)
	at := image.Pt(px(qrX), px(qrY))
	draw.Draw(dst, image.Rectangle{Min: at, Max: at.Add(img.Bounds().Size())}, img, img.Bounds().Min, draw.Over)
	return nil
}

// drawSignature 高度固定，保持宽高比，水平居中于 sigCenterX，底边 sigBottom
func drawSignature(dst draw.Image, sig image.Image) {
	sb := sig.Bounds()
	if sb.Dy() == 0 {
		return
	}
	hUnits := float64(sigHeight)
	wUnits := float64(sb.Dx()) / float64(sb.Dy()) * hUnits
	x0 := px(sigCenterX - wUnits/2)
	y0 := px(sigBottom - hUnits)
	rect := image.Rect(x0, y0, x0+px(wUnits), y0+px(hUnits))
	xdraw.CatmullRom.Scale(dst, rect, sig, sb, xdraw.Over, nil)
}

func widthUnits(f font.Face, s string) float64 {
	return float64(font.MeasureString(f, s)) / 64 / scale
}

func lineHeightUnits(f font.Face) float64 {
	m := f.Metrics()
	return float64(m.Ascent+m.Descent) / 64 / scale
}

// drawText (x, y) 为文字顶边
func drawText(dst draw.Image, f font.Face, s string, x, y float64) {
	if s == "" {
		return
	}
	d := font.Drawer{
		Dst:  dst,
		Src:  image.White,
		Face: f,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(math.Round(x * scale * 64)),
			Y: fixed.Int26_6(math.Round(y*scale*64)) + f.Metrics().Ascent,
		},
	}
	d.DrawString(s)
}

func drawCentered(dst draw.Image, f font.Face, s string, cx, y float64) {
	drawText(dst, f, s, cx-widthUnits(f, s)/2, y)
}

// drawWrapped 超过 wrapWidth 时在中间的词处拆成两行
func drawWrapped(dst draw.Image, f font.Face, s string, x, y float64) {
	first, second := SplitLine(s, widthUnits(f, s))
	drawText(dst, f, first, x, y)
	if second != "" {
		drawText(dst, f, second, x, y+lineHeightUnits(f)+wrapGap)
	}
}

// SplitLine width 为 s 的渲染宽度（画布单位）；不需拆分时 second 为空
func SplitLine(s string, width float64) (first, second string) {
	if width <= wrapWidth {
		return s, ""
	}
	words := strings.Split(s, " ")
	half := len(words) / 2
	if half == 0 {
		return s, ""
	}
	return strings.Join(words[:half], " "), strings.Join(words[half:], " ")
}
