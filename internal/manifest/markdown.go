package manifest

import (
	"bytes"
	"fmt"
	"text/template"
)

var markdownTemplate = template.Must(template.New("matrix").Parse(`# Version Matrix

This file is generated by ` + "`pasreporter pin`" + `. Do not edit manually.

## Pinned Versions

| Component | Version |
|-----------|---------|
| Superset SHA | ` + "`{{.ShortSHA}}`" + ` |
| Superset Version | {{.SupersetVersion}} |
| Superset Branch/Tag | {{.SupersetBranch}} |
| Python | {{.PythonVersion}} |
| Node.js | {{.NodeVersion}} |
| npm | {{.NpmVersion}} |
| pasreporter | {{.AppVersion}} |

## Build Info

- Build timestamp: {{.BuildTimestamp}}
- Build host: {{.BuildHost}}

## Rebuild Instructions

` + "```bash" + `
pasreporter pin --sha {{.SupersetSHA}}
pasreporter build
pasreporter wheels
` + "```" + `
`))

type markdownData struct {
	Matrix
	ShortSHA string
}

func renderMarkdown(m Matrix) ([]byte, error) {
	short := m.SupersetSHA
	if len(short) > 12 {
		short = short[:12]
	}
	var buf bytes.Buffer
	if err := markdownTemplate.Execute(&buf, markdownData{Matrix: m, ShortSHA: short}); err != nil {
		return nil, fmt.Errorf("failed to render version matrix markdown: %w", err)
	}
	return buf.Bytes(), nil
}
