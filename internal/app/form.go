package app

import (
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"

	"github.com/AratKruglik/wayforpay-go/internal/signature"
)

// renderAutoSubmitForm emits a minimal HTML document with one hidden-input
// form that submits itself to the hosted payment page on load. Array-valued
// fields produce one input per element with the name[] convention. Fields are
// written in sorted key order so the output is deterministic.
func renderAutoSubmitForm(action string, payload map[string]any) string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var inputs strings.Builder
	for _, key := range keys {
		switch values := payload[key].(type) {
		case []string:
			for _, v := range values {
				writeInput(&inputs, key+"[]", v)
			}
		case []int:
			for _, v := range values {
				writeInput(&inputs, key+"[]", strconv.Itoa(v))
			}
		case []float64:
			for _, v := range values {
				writeInput(&inputs, key+"[]", signature.FormatAmount(v))
			}
		default:
			writeInput(&inputs, key, formValue(payload[key]))
		}
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Redirecting to payment...</title>
</head>
<body>
    <form id="wayforpay_form" method="POST" action="%s" accept-charset="utf-8">
%s    </form>
    <script type="text/javascript">
        document.getElementById('wayforpay_form').submit();
    </script>
</body>
</html>`, html.EscapeString(action), inputs.String())
}

func writeInput(b *strings.Builder, name, value string) {
	fmt.Fprintf(b, "        <input type=\"hidden\" name=\"%s\" value=\"%s\" />\n",
		html.EscapeString(name), html.EscapeString(value))
}

func formValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return signature.FormatAmount(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
