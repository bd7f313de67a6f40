package browser

// Element scripts shared by the Playwright and CDP pages. Each takes the
// element as its first parameter.
const (
	scriptAttribute = `(el, name) => el.getAttribute(name)`
	scriptTagName   = `(el) => el.tagName.toLowerCase()`
	scriptClosest   = `(el, sel) => el.closest(sel)`
	scriptInnerText = `(el) => el.innerText`

	// Visible matches Playwright's definition: a non-empty box and no
	// visibility:hidden.
	scriptVisible = `(el) => {
  const r = el.getBoundingClientRect();
  return r.width > 0 && r.height > 0 && getComputedStyle(el).visibility !== "hidden";
}`
)
