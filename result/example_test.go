// SPDX-License-Identifier: EPL-2.0

package result_test

import (
	"fmt"

	"github.com/Liam-coding/Voice-API/result"
)

func ExampleParse() {
	ok := result.Parse([]byte(`{"translated_text":"  hi  ","original_text":"你好"}`))
	fmt.Printf("%v %q %q\n", ok.Status, ok.Translation, ok.Original)

	failed := result.Parse([]byte(`{"result":"failed","err_msg":"x"}`))
	fmt.Printf("%v %q %q\n", failed.Status, failed.Message, failed.Translation)

	// Output:
	// success "hi" "你好"
	// business_error "x" ""
}
