package assets

import _ "embed" // 에셋 임베드용

// ReleaseMessagesYAML 는 발매일 봇 메시지 YAML이다.
//
//go:embed messages/release-messages.yml
var ReleaseMessagesYAML string

// MessagesRootKey: YAML 내 메시지 루트 키
const MessagesRootKey = "releasebot"
