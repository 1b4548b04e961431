// nolint:mnd
package helpers

// символы стандартного алфавита Base64, без '='
var base64Alphabet = [256]bool{} // nolint:gochecknoglobals

// nolint:gochecknoinits
func init() {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
	for i := 0; i < len(alphabet); i++ {
		base64Alphabet[alphabet[i]] = true
	}
}

// ScanBase64 проверяет форму стандартного Base64 без декодирования:
// длина кратна четырём, символы только из канонического алфавита,
// '=' допускается только в конце и не более двух.
// Возвращает количество символов '=' в конце.
func ScanBase64(data []byte) (int, bool) {
	n := len(data)
	if n == 0 || n%4 != 0 {
		return 0, false
	}

	padding := 0
	for padding < 2 && data[n-1-padding] == '=' {
		padding++
	}

	for i := 0; i < n-padding; i++ {
		if !base64Alphabet[data[i]] {
			return 0, false
		}
	}

	return padding, true
}

// DecodedSize возвращает размер данных после декодирования,
// не выполняя самого декодирования.
func DecodedSize(encodedLen int, padding int) int {
	if encodedLen == 0 {
		return 0
	}
	return encodedLen/4*3 - padding
}
