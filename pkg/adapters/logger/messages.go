package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Session level messages
		"Session %s: playing %s":                                   "セッション %s: %s を再生します",
		"Session %s ended in state %s":                             "セッション %s は状態 %s で終了しました",
		"Playback finished: %d frames, %d behind schedule":         "再生完了: %d フレーム, うち %d フレームが遅延",
		"Playback failed at %s: %s":                                "%s で再生に失敗しました: %s",
		"Playback interrupted":                                     "再生が中断されました",
		"Reached playback limit at %s":                             "再生上限 %s に達しました",
		"Rendering %dx%d grid, %s palette, %s per frame":           "%dx%d グリッド, %s パレット, 1フレーム %s で描画します",
		"Stream declares no frame rate, using %s":                  "ストリームにフレームレートがありません。%s を使用します",
		"Terminal resized to %dx%d; playback keeps the %dx%d grid": "端末サイズが %dx%d に変更されました。%dx%d グリッドのまま再生します",

		// State machine (debug)
		"State %s -> %s": "状態 %s -> %s",
		"Stream %dx%d, codec %s, frame interval %s": "ストリーム %dx%d, コーデック %s, フレーム間隔 %s",

		// Video source
		"Reading YUV4MPEG2 stream from %s": "%s から YUV4MPEG2 ストリームを読み込み中",
		"Probed %s: %s %dx%d":              "%s を解析しました: %s %dx%d",
		"Started %s for %s":                "%s を %s のために起動しました",

		// CLI
		"Serving metrics on %s":                        "%s でメトリクスを公開中",
		"Metrics server stopped: %v":                   "メトリクスサーバーが停止しました: %v",
		"Output is not a terminal, writing plain text": "出力が端末ではないため、プレーンテキストで出力します",
		"Failed to restore display: %v":                "ディスプレイの復元に失敗しました: %v",
		"Failed to write summary: %v":                  "サマリーの書き込みに失敗しました: %v",
	})
}
