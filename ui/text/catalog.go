// Package text holds the user-facing message catalog. Messages are looked up
// by key and formatted with a locale-aware printer.
package text

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	MsgInstructClick     = "instruct.click"
	MsgInstructSegments  = "instruct.segments"
	MsgInstructReference = "instruct.reference"
	MsgInstructClear     = "instruct.clear"
	MsgInstructQuit      = "instruct.quit"

	MsgImageLoaded      = "image.loaded"
	MsgImageLoadFailed  = "image.load_failed"
	MsgProcessingFailed = "image.processing_failed"

	MsgPointAdded         = "point.added"
	MsgPromptReference    = "reference.prompt"
	MsgReferenceSet       = "reference.set"
	MsgReferenceCancelled = "reference.cancelled"
	MsgResult             = "length.result"
	MsgCleared            = "points.cleared"
	MsgUncalibrated       = "status.uncalibrated"
	MsgCalibrated         = "status.calibrated"
	MsgHistory            = "history.summary"

	MsgNeedCalibration    = "diag.calibration_missing"
	MsgNeedTwoPoints      = "diag.insufficient_points"
	MsgInvalidReference   = "diag.invalid_calibration"
	MsgBufferFull         = "diag.buffer_full"
	MsgAwaitingReference  = "diag.awaiting_reference"
	MsgDegenerateSegment  = "diag.degenerate_segment"
	MsgNoImage            = "diag.no_image"
	MsgUnexpected         = "diag.unexpected"
)

// Supported locales. The first entry is the fallback.
var Supported = []language.Tag{
	language.English,
	language.MustParse("zh-Hant"),
}

var messages = map[string][2]string{
	MsgInstructClick:     {"Click four points on the image to measure the pipe length", "請在圖片上點選四個點來測量水管長度"},
	MsgInstructSegments:  {"The first two points span the known length, the last two the unknown length", "前兩個點為已知長度，後兩個點為未知長度"},
	MsgInstructReference: {"Press 'r' to set the reference length (calibration)", "按 'r' 設置參考長度（用於校準測量）"},
	MsgInstructClear:     {"Press 'c' to clear the points", "按 'c' 清除所有點"},
	MsgInstructQuit:      {"Press 'q' to quit", "按 'q' 退出"},

	MsgImageLoaded:      {"Loaded %s", "已載入 %s"},
	MsgImageLoadFailed:  {"Cannot read image: %s", "無法讀取圖片: %s"},
	MsgProcessingFailed: {"Image processing failed", "圖片處理失敗"},

	MsgPointAdded:         {"Point %d: (%d, %d)", "點 %d: (%d, %d)"},
	MsgPromptReference:    {"Enter the known length (cm) and press Enter:", "請輸入已知長度（公分）並按 Enter:"},
	MsgReferenceSet:       {"Reference set: %.1f cm = %.1f px", "已設置參考長度: %.1f 公分 = %.1f 像素"},
	MsgReferenceCancelled: {"Reference input cancelled", "已取消參考長度輸入"},
	MsgResult:             {"Unknown pipe length: %.1f cm", "未知水管的實際長度: %.1f cm"},
	MsgCleared:            {"Points cleared", "已清除所有點"},
	MsgUncalibrated:       {"Not calibrated", "尚未校準"},
	MsgCalibrated:         {"%.1f cm = %.1f px", "%.1f 公分 = %.1f 像素"},
	MsgHistory:            {"Measurements: %d", "測量次數: %d"},

	MsgNeedCalibration:   {"Set the reference length first (press 'r')", "請先設置參考長度（按 'r' 鍵）"},
	MsgNeedTwoPoints:     {"Click the two points of the known length first", "請先點選已知長度的兩個點"},
	MsgInvalidReference:  {"The reference length must be a positive number", "參考長度必須為正數"},
	MsgBufferFull:        {"Four points recorded: press 'r' to calibrate or 'c' to clear", "已點選四個點：按 'r' 校準或按 'c' 清除"},
	MsgAwaitingReference: {"Finish entering the reference length first", "請先完成參考長度輸入"},
	MsgDegenerateSegment: {"The known segment has zero length", "已知長度的線段長度為零"},
	MsgNoImage:           {"No image loaded", "尚未載入圖片"},
	MsgUnexpected:        {"Error: %v", "錯誤: %v"},
}

var (
	cat     catalog.Catalog
	matcher = language.NewMatcher(Supported)
)

func init() {
	b := catalog.NewBuilder(catalog.Fallback(Supported[0]))
	for key, msgs := range messages {
		for i, tag := range Supported {
			if err := b.SetString(tag, key, msgs[i]); err != nil {
				panic(err)
			}
		}
	}
	cat = b
}

// Printer formats catalog messages for one locale.
type Printer struct {
	tag language.Tag
	p   *message.Printer
}

// NewPrinter returns a printer for the closest supported match of locale.
// Unknown or malformed locales fall back to English.
func NewPrinter(locale string) *Printer {
	tag := Match(locale)
	return &Printer{tag: tag, p: message.NewPrinter(tag, message.Catalog(cat))}
}

// Match resolves locale (e.g. "zh-TW", "en-GB") to a supported tag.
func Match(locale string) language.Tag {
	t, err := language.Parse(locale)
	if err != nil {
		return Supported[0]
	}
	_, idx, conf := matcher.Match(t)
	if conf == language.No {
		return Supported[0]
	}
	return Supported[idx]
}

// Tag reports the resolved locale.
func (p *Printer) Tag() language.Tag { return p.tag }

// Sprintf formats the message registered under key.
func (p *Printer) Sprintf(key string, args ...any) string {
	return p.p.Sprintf(key, args...)
}

// Lines formats several argument-less messages, one per entry.
func (p *Printer) Lines(keys ...string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, p.p.Sprintf(k))
	}
	return out
}
