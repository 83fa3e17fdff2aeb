/*
Package selenide provides concise UI assertions on top of a Selenium/WebDriver
session.

Elements and collections are lazy: Find only records how to locate an
element, and every assertion or command locates it again, retrying until the
condition holds or the configured timeout elapses. A failed assertion returns
an error describing the element, the expected condition and the timeout:

	Element not found {By.selector: h9}
	Expected: text 'expected text'
	Timeout: 4.000 s.

You'll need a WebDriver server, such as a Selenium server, a browser driver or
Appium, listening at Config.Remote.

Example usage:

	package main

	import (
		"log"

		"github.com/wanmail/selenide"
	)

	func main() {
		cfg, err := selenide.ConfigFromEnv()
		if err != nil {
			log.Fatal(err)
		}
		d, err := selenide.Start(cfg)
		if err != nil {
			log.Fatal(err)
		}
		defer d.Quit()

		if err := d.Open("https://go.dev/play/"); err != nil {
			log.Fatal(err)
		}
		if err := d.Find("#run").Click(); err != nil {
			log.Fatal(err)
		}
		// Wait for the program to finish running.
		if err := d.Find("#output").ShouldHave(selenide.Text("Program exited.")); err != nil {
			log.Fatal(err)
		}
	}

Page objects bind their fields with find tags:

	type LoginPage struct {
		User   *selenide.Element    `find:"id=user"`
		Submit selenium.WebElement  `find:"css=button[type=submit]"`
		Errors *selenide.Collection `find:"className=error"`
	}

	page := new(LoginPage)
	err := d.Open("/login", page)
*/
package selenide
