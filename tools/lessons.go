/* Copyright 2025 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package tools renders the lessons and the catalogs as HTML.
package tools

import (
	"fmt"
	"io"
	"io/ioutil"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Comcast/flange/catalog"

	md "github.com/russross/blackfriday/v2"
)

// Lesson is one markdown file from the lessons directory.
type Lesson struct {
	// Name is the filename without its extension
	// (e.g. "01-the-store").
	Name string

	// Title is the first markdown heading, or the Name when
	// there isn't one.
	Title string

	Filename string
}

// ReadLessons lists the markdown lessons in a directory, sorted by
// name, which is why the lesson files have those number prefixes.
func ReadLessons(dirname string) ([]*Lesson, error) {
	entries, err := ioutil.ReadDir(dirname)
	if err != nil {
		return nil, err
	}
	acc := make([]*Lesson, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		filename := filepath.Join(dirname, name)
		title, err := lessonTitle(filename)
		if err != nil {
			return nil, err
		}
		acc = append(acc, &Lesson{
			Name:     strings.TrimSuffix(name, ".md"),
			Title:    title,
			Filename: filename,
		})
	}
	sort.Slice(acc, func(i, j int) bool {
		return acc[i].Name < acc[j].Name
	})
	return acc, nil
}

func lessonTitle(filename string) (string, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(string(bs), "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:]), nil
		}
	}
	name := filepath.Base(filename)
	return strings.TrimSuffix(name, ".md"), nil
}

// RenderLessonHTML renders one lesson's markdown as an HTML
// fragment.
func RenderLessonHTML(l *Lesson, out io.Writer) error {
	bs, err := ioutil.ReadFile(l.Filename)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, `<div class="lesson doc">%s</div>`+"\n", md.Run(bs))
	return err
}

// RenderCatalogHTML renders a catalog's prose and sources as an HTML
// fragment: the doc, then a table of the creators, then the reducer.
func RenderCatalogHTML(c *catalog.Catalog, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	f(`<div class="catalogDoc doc">%s</div>`, md.Run([]byte(c.Doc)))

	{ // Creators
		f(`<div class="creators"><table>`)
		names := make([]string, 0, len(c.Creators))
		for name := range c.Creators {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			cs := c.Creators[name]
			f(`<tr class="creator"><td><span id="%s" class="creatorName">%s</span></td><td>`, name, name)
			f(`<div class="code"><pre>%s</pre></div>`, cs.Source)
			f(`</td></tr>`)
		}
		f(`</table></div>`)
	}

	if c.Reducer != nil {
		f(`<div class="reducer">`)
		f(`<div class="code"><pre>%s</pre></div>`, c.Reducer.Source)
		f(`</div>`)
	}

	return nil
}

// RenderPage writes a full HTML page around the given render
// function.
func RenderPage(title string, cssFiles []string, out io.Writer, body func(io.Writer) error) error {
	if cssFiles == nil {
		cssFiles = []string{"/static/lessons.css"}
	}

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
`, title)

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `
  </head>
  <body>
    <h1>%s</h1>
`, title)

	if err := body(out); err != nil {
		return err
	}

	fmt.Fprintf(out, `
  </body>
</html>
`)

	return nil
}

// RenderLessonPage renders a complete HTML page for one lesson.
func RenderLessonPage(l *Lesson, cssFiles []string, out io.Writer) error {
	return RenderPage(l.Title, cssFiles, out, func(out io.Writer) error {
		return RenderLessonHTML(l, out)
	})
}

// RenderCatalogPage renders a complete HTML page for one catalog.
func RenderCatalogPage(c *catalog.Catalog, cssFiles []string, out io.Writer) error {
	return RenderPage(c.Name, cssFiles, out, func(out io.Writer) error {
		return RenderCatalogHTML(c, out)
	})
}
