package selenide

import (
	"testing"
)

func TestSelectOption(t *testing.T) {
	d, _, _ := newTestDriver(t, pageWithSelects(), testConfig())
	hero := d.FindBy(ByID("hero"))

	tests := []struct {
		name   string
		choose func() error
		want   string
	}{
		{"by text", func() error { return hero.SelectOption("Bruce Willis") }, "Bruce Willis"},
		{"by text with quote", func() error { return hero.SelectOption("John Mc'Lain") }, "John Mc'Lain"},
		{"by text with extra spaces", func() error { return hero.SelectOption("Chuck Norris") }, "Chuck Norris"},
		{"by value", func() error { return hero.SelectOptionByValue("bruce willis") }, "Bruce Willis"},
		{"by index", func() error { return hero.SelectOptionByIndex(0) }, "-- Select your hero --"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.choose(); err != nil {
				t.Fatalf("select returned error: %v", err)
			}
			got, err := hero.SelectedOptionText()
			if err != nil {
				t.Fatalf("SelectedOptionText() returned error: %v", err)
			}
			if got != tc.want {
				t.Errorf("SelectedOptionText() = %q, want %q", got, tc.want)
			}
			if err := hero.SelectedOption().ShouldBe(Selected); err != nil {
				t.Errorf("SelectedOption().ShouldBe(Selected) returned error: %v", err)
			}
		})
	}
}

func TestSelectMissingOption(t *testing.T) {
	d, _, _ := newTestDriver(t, pageWithSelects(), testConfig())
	hero := d.FindBy(ByID("hero"))
	tests := []struct {
		err  error
		want string
	}{
		{hero.SelectOption("Rambo"), "Element not found {By.id: hero/option[text:Rambo]}\nExpected: exist\nTimeout: 1.500 s."},
		{hero.SelectOptionByValue("rambo"), "Element not found {By.id: hero/option[value:rambo]}\nExpected: exist\nTimeout: 1.500 s."},
		{hero.SelectOptionByIndex(9), "Element not found {By.id: hero/option[index:9]}\nExpected: exist\nTimeout: 1.500 s."},
	}
	for _, tc := range tests {
		if tc.err == nil || tc.err.Error() != tc.want {
			t.Errorf("select returned %v, want:\n%s", tc.err, tc.want)
		}
	}
}

func TestLongestWord(t *testing.T) {
	for in, want := range map[string]string{
		"Chuck  Norris": "Norris",
		"a bc def":      "def",
		"   ":           "",
	} {
		if got := longestWord(in); got != want {
			t.Errorf("longestWord(%q) = %q, want %q", in, got, want)
		}
	}
}
