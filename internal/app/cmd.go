package app

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーモードで起動することを示す。
	CommandServe Command = "serve"
	// CommandPosts は公開記事を取得し、正規化済みJSONとして標準出力に書き出す。
	// Notionの設定確認やデータベース構成の調査に使う。
	CommandPosts Command = "posts"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand はコマンドライン引数からサブコマンドを解析する。
// 引数が空またはサポート外のコマンドの場合はCommandServeを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch args[0] {
	case "serve":
		return CommandServe
	case "posts":
		return CommandPosts
	case "healthcheck":
		return CommandHealthcheck
	default:
		return CommandServe
	}
}
