package shell

import (
	"strconv"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

// HTMXScript returns the htmx script tag.
func HTMXScript() g.Node {
	return html.Script(
		g.Attr("src", "https://unpkg.com/htmx.org@2.0.4"),
		g.Attr("crossorigin", "anonymous"),
	)
}

// ShellScript wires the mobile toggle, the breakpoint listener, nav:activate and showToast.
func ShellScript() g.Node {
	js := `window.portalShell = (function () {
    var mq = window.matchMedia('(max-width: ` + strconv.Itoa(MobileBreakpointPx-1) + `px)');
    function panel() { return document.getElementById('mobile-nav'); }
    function setMobile(on) {
        document.body.classList.toggle('is-mobile', on);
        if (!on) { closeMobile(); }
    }
    function openMobile() {
        var p = panel(); if (!p) return;
        p.classList.add('open'); p.setAttribute('aria-hidden', 'false');
    }
    function closeMobile() {
        var p = panel(); if (!p) return;
        p.classList.remove('open'); p.setAttribute('aria-hidden', 'true');
    }
    function toggleMobile() {
        var p = panel(); if (!p) return;
        if (p.classList.contains('open')) { closeMobile(); } else { openMobile(); }
    }
    function isActive(href, current, root) {
        if (!href || !current) return false;
        if (href === current) return true;
        if (href === root || href === root + '/') return current === root || current === root + '/';
        return current.indexOf(href + '/') === 0 || current.indexOf(href + '?') === 0;
    }
    function activate(path) {
        document.querySelectorAll('[data-nav-href]').forEach(function (a) {
            var on = isActive(a.dataset.navHref, path, a.dataset.navRoot);
            a.classList.toggle('active', on);
            if (on) { a.setAttribute('aria-current', 'page'); } else { a.removeAttribute('aria-current'); }
        });
        closeMobile();
    }
    function toast(detail) {
        if (!detail || !detail.message) return;
        var box = document.getElementById('toasts'); if (!box) return;
        var el = document.createElement('div');
        el.className = 'toast toast-' + (detail.type || 'info');
        el.setAttribute('role', 'status');
        el.textContent = detail.message;
        box.appendChild(el);
        setTimeout(function () { el.remove(); }, 5000);
    }
    mq.addEventListener('change', function (e) { setMobile(e.matches); });
    document.addEventListener('DOMContentLoaded', function () { setMobile(mq.matches); });
    document.body.addEventListener('nav:activate', function (e) { activate(e.detail && e.detail.path); });
    document.body.addEventListener('showToast', function (e) { toast(e.detail); });
    return { toggleMobile: toggleMobile, closeMobile: closeMobile, isActive: isActive };
})();`
	return html.Script(g.Attr("type", "text/javascript"), g.Raw(js))
}
