// Package main provides localization for the asciiplay CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Grid":      "グリッド",
		"Rendering": "描画",
		"Timing":    "タイミング",
		"Decoding":  "デコード",
		"Logging":   "ログ",

		// Root command
		"Play videos as coloured text in the terminal": "動画を端末上のカラーテキストとして再生",

		// Flags
		"YAML configuration file":                                             "YAML設定ファイル",
		"Grid rows (0 = display height)":                                      "グリッドの行数（0 = 端末の高さ）",
		"Grid columns (0 = display width)":                                    "グリッドの列数（0 = 端末の幅）",
		"Glyph ramp (short, extended)":                                        "文字ランプ（short, extended）",
		"Custom glyph ramp, sparsest first":                                   "カスタム文字ランプ（疎から密の順）",
		"Colour mode (auto, cube, base8, mono)":                               "カラーモード（auto, cube, base8, mono）",
		"Assume this many terminal colours (0 = detect)":                      "端末の色数を指定（0 = 自動検出）",
		"Write plain text frames without escape sequences":                    "エスケープシーケンスなしのテキストで出力",
		"Render frames as fast as they decode":                                "デコード速度のままフレームを描画",
		"Frame interval in milliseconds for streams without a frame rate":     "フレームレートのないストリームのフレーム間隔（ミリ秒）",
		"Stop after this much stream time in milliseconds (0 = whole stream)": "この再生時間（ミリ秒）で停止（0 = 全体）",
		"Path to the ffmpeg executable":                                       "ffmpeg実行ファイルのパス",
		"Log level (debug, info, warn, error)":                                "ログレベル（debug, info, warn, error）",
		"Suppress all log output":                                             "全てのログ出力を抑制",
		"Serve Prometheus metrics on this address":                            "このアドレスでPrometheusメトリクスを公開",

		"Write a playback summary to this file (Markdown format)": "再生サマリーをファイルに出力（Markdown形式）",

		// Summary content
		"Playback Summary":       "再生サマリー",
		"Generated":              "生成日時",
		"Results":                "実行結果",
		"Settings":               "設定",
		"Item":                   "項目",
		"Value":                  "値",
		"Source":                 "ソース",
		"Status":                 "状態",
		"Failed Stage":           "失敗したステージ",
		"Error":                  "エラー",
		"Codec":                  "コーデック",
		"Frames Rendered":        "描画フレーム数",
		"Frames Behind Schedule": "遅延フレーム数",
		"Total Overrun":          "合計超過時間",
		"Packets Discarded":      "破棄したパケット数",
		"Interrupted":            "中断",
		"Elapsed":                "経過時間",
		"Grid (columns x rows)":  "グリッド（列 x 行）",
		"Colour Mode":            "カラーモード",
		"Glyph Ramp":             "文字ランプ",
		"%d glyphs":              "%d 文字",
		"Frame Interval":         "フレーム間隔",
		"Time Limit":             "再生上限",
		"Unpaced":                "制限なし",
		"None":                   "なし",
		"Yes":                    "はい",
		"No":                     "いいえ",

		// Error messages
		"Exactly one source argument is required": "ソース引数を1つだけ指定してください",
	})
}
