package certificate

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	"community-events/internal/core/config"
)

// 内置模板尺寸（约 A4 横向 171ppi）
const (
	defaultWidth  = 2000
	defaultHeight = 1414
)

// 内置签名尺寸
const (
	sigWidth     = 300
	sigImgHeight = 100
	sigStroke    = 4
)

var defaultBackground = color.RGBA{R: 0x14, G: 0x14, B: 0x24, A: 0xff}

// Assets 模板与签名，启动时加载一次，只读
type Assets struct {
	Template   image.Image
	Signatures map[string]image.Image // presenterID -> 签名
	Fallback   image.Image            // 未配置时用 DefaultSignature
}

func LoadAssets(c config.Certificate) (*Assets, error) {
	a := &Assets{Signatures: make(map[string]image.Image, len(c.Signatures))}

	if c.Template == "" {
		a.Template = DefaultTemplate()
	} else {
		img, err := decodeFile(c.Template)
		if err != nil {
			return nil, fmt.Errorf("certificate template: %w", err)
		}
		a.Template = img
	}

	if c.FallbackSignature == "" {
		a.Fallback = DefaultSignature()
	} else {
		img, err := decodeFile(c.FallbackSignature)
		if err != nil {
			return nil, fmt.Errorf("fallback signature: %w", err)
		}
		a.Fallback = img
	}
	for id, p := range c.Signatures {
		img, err := decodeFile(p)
		if err != nil {
			return nil, fmt.Errorf("signature %s: %w", id, err)
		}
		a.Signatures[id] = img
	}
	return a, nil
}

func (a *Assets) signature(presenterID string) image.Image {
	if img, ok := a.Signatures[presenterID]; ok {
		return img
	}
	return a.Fallback
}

func DefaultTemplate() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, defaultWidth, defaultHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: defaultBackground}, image.Point{}, draw.Src)
	return img
}

// DefaultSignature 透明底上的一道白色波浪线
func DefaultSignature() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, sigWidth, sigImgHeight))
	mid, amp := float64(sigImgHeight)/2, float64(sigImgHeight)/4
	for x := 0; x < sigWidth; x++ {
		y := int(math.Round(mid + amp*math.Sin(4*math.Pi*float64(x)/sigWidth)))
		for dy := -sigStroke; dy <= sigStroke; dy++ {
			img.Set(x, y+dy, color.White)
		}
	}
	return img
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
