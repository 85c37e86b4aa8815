package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burnlist/burnlist/internal/adapter"
	m "github.com/burnlist/burnlist/internal/model"
)

type wantDiag struct {
	severity m.Severity
	line     int
	contains string
}

func visitSource(t *testing.T, path, src string) []m.Diagnostic {
	t.Helper()

	tree, err := adapter.NewLocalPythonFileAdapter().Parse(context.Background(), []byte(src))
	require.NoError(t, err)

	defer tree.Close()

	scan := NewEngine(nil, nil, nil, nil).ScanTree(m.Path(path), m.KindPython, src, tree.RootNode())

	return VisitPython(m.Path(path), []byte(src), tree.RootNode(), scan)
}

func assertDiagnostics(t *testing.T, got []m.Diagnostic, want []wantDiag) {
	t.Helper()

	require.Len(t, got, len(want), "diagnostics: %+v", got)

	for i, w := range want {
		assert.Equal(t, w.severity, got[i].Severity, "diagnostic %d", i)
		assert.Equal(t, w.line, got[i].Line, "diagnostic %d", i)
		assert.Contains(t, got[i].Message, w.contains, "diagnostic %d", i)
	}
}

func TestVisitor_SQLInjection(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []wantDiag
	}{
		{
			name: "percent interpolation",
			src: "def f(cr, user_id):\n" +
				"    cr.execute(\"SELECT * FROM t WHERE id = %s\" % user_id)\n",
			want: []wantDiag{{m.SeverityError, 2, "% interpolation"}},
		},
		{
			name: "parameters",
			src: "def f(cr, user_id):\n" +
				"    cr.execute(\"SELECT * FROM t WHERE id = %s\", (user_id,))\n",
		},
		{
			name: "f-string through binding",
			src: "def f(self, name):\n" +
				"    query = f\"SELECT id FROM t WHERE name = '{name}'\"\n" +
				"    self.env.cr.execute(query)\n",
			want: []wantDiag{{m.SeverityError, 3, "f-string"}},
		},
		{
			name: "augmented concatenation",
			src: "def f(self, where):\n" +
				"    q = \"SELECT id FROM t\"\n" +
				"    q += where\n" +
				"    self.env.cr.execute(q)\n",
			want: []wantDiag{{m.SeverityError, 4, "+ concatenation"}},
		},
		{
			name: "format call",
			src: "def f(self, col):\n" +
				"    self._cr.execute(\"SELECT {} FROM t\".format(col))\n",
			want: []wantDiag{
				{m.SeverityError, 2, ".format()"},
				{m.SeverityWarning, 2, "self._cr is deprecated"},
			},
		},
		{
			name: "SQL composition is safe",
			src: "def f(self, col):\n" +
				"    self.env.cr.execute(SQL(\"SELECT {} FROM t\").format(col))\n",
		},
		{
			name: "binding cycle terminates",
			src: "def f(self):\n" +
				"    a = b\n" +
				"    b = a\n" +
				"    self.env.cr.execute(a)\n",
		},
		{
			name: "bindings do not leak across functions",
			src: "def f(self, x):\n" +
				"    q = \"SELECT %s\" % x\n" +
				"\n" +
				"def g(self):\n" +
				"    self.env.cr.execute(q)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDiagnostics(t, visitSource(t, "addon/models/a.py", tt.src), tt.want)
		})
	}
}

func TestVisitor_BannedConstructs(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []wantDiag
	}{
		{
			name: "imports with alias and from",
			src:  "import pickle as pk\nfrom random import choice\nimport os\n",
			want: []wantDiag{
				{m.SeverityError, 1, "'pickle'"},
				{m.SeverityError, 2, "'random'"},
			},
		},
		{
			name: "relative import is ignored",
			src:  "from . import random\n",
		},
		{
			name: "builtin",
			src:  "x = eval(data)\n",
			want: []wantDiag{{m.SeverityError, 1, "eval()"}},
		},
		{
			name: "csrf disabled on route",
			src:  "@http.route('/x', csrf=False)\ndef h(self):\n    pass\n",
			want: []wantDiag{{m.SeverityError, 1, "csrf=False"}},
		},
		{
			name: "states on field",
			src:  "state = fields.Char(states={'draft': [('readonly', False)]})\n",
			want: []wantDiag{{m.SeverityError, 1, "states="}},
		},
		{
			name: "legacy field keyword",
			src:  "total = fields.Float(group_operator='sum')\n",
			want: []wantDiag{{m.SeverityError, 1, "aggregator="}},
		},
		{
			name: "renamed attribute",
			src:  "groups = user.groups_id\n",
			want: []wantDiag{{m.SeverityError, 1, "'group_ids'"}},
		},
		{
			name: "renamed method definition",
			src:  "def name_get(self):\n    return []\n",
			want: []wantDiag{{m.SeverityError, 1, "_compute_display_name"}},
		},
		{
			name: "renamed dict key",
			src:  "vals = {'groups_id': [(4, gid)]}\n",
			want: []wantDiag{{m.SeverityError, 1, "'group_ids'"}},
		},
		{
			name: "deprecated decorator",
			src:  "@api.multi\ndef f(self):\n    pass\n",
			want: []wantDiag{{m.SeverityError, 1, "@api.multi"}},
		},
		{
			name: "weak hash",
			src:  "h = hashlib.md5(data).hexdigest()\n",
			want: []wantDiag{{m.SeverityError, 1, "hashlib.md5"}},
		},
		{
			name: "exclusive action keys",
			src:  "action = {'view_id': 1, 'views': []}\n",
			want: []wantDiag{{m.SeverityError, 1, "'view_id' and 'views'"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDiagnostics(t, visitSource(t, "addon/models/a.py", tt.src), tt.want)
		})
	}
}

func TestVisitor_Sudo(t *testing.T) {
	tests := []struct {
		name string
		path string
		src  string
		want []wantDiag
	}{
		{
			name: "no marker",
			path: "addon/models/a.py",
			src:  "def f(self):\n    return self.env['res.partner'].sudo().search([], limit=1)\n",
			want: []wantDiag{{m.SeverityError, 2, "Privilege escalation"}},
		},
		{
			name: "marker on config parameter read",
			path: "addon/models/a.py",
			src:  "def f(self):\n    v = self.env['ir.config_parameter'].sudo().get_param('k')  # burn-ignore-sudo\n",
		},
		{
			name: "marker outside safe pattern",
			path: "addon/models/a.py",
			src:  "def f(self):\n    self.env['res.partner'].sudo().unlink()  # burn-ignore-sudo\n",
			want: []wantDiag{{m.SeverityError, 2, "only covers"}},
		},
		{
			name: "marker inside cron method",
			path: "addon/models/a.py",
			src:  "def _cron_sync(self):\n    self.env['a'].sudo().search([], limit=10)  # burn-ignore-sudo\n",
		},
		{
			name: "strict file ignores markers",
			path: "addon/utils/security.py",
			src: "def _get_system_parameter(self, key):\n" +
				"    return self.env['ir.config_parameter'].sudo().get_param(key)\n" +
				"\n" +
				"def other(self):\n" +
				"    return self.env['ir.config_parameter'].sudo().get_param('x')  # burn-ignore-sudo\n",
			want: []wantDiag{{m.SeverityError, 5, "utils/security.py"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDiagnostics(t, visitSource(t, tt.path, tt.src), tt.want)
		})
	}
}

func TestVisitor_QueriesInLoops(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []wantDiag
	}{
		{
			name: "search inside loop",
			src: "def f(self, ids):\n" +
				"    for i in ids:\n" +
				"        self.env['x'].search([('id', '=', i)])\n",
			want: []wantDiag{{m.SeverityError, 3, "N+1"}},
		},
		{
			name: "chunking loop",
			src: "def f(self, ids, chunk_size):\n" +
				"    for start in range(0, len(ids), chunk_size):\n" +
				"        self.env['x'].search([('id', 'in', ids[start:start + chunk_size])])\n",
		},
		{
			name: "audit marker suppresses",
			src: "def f(self, ids):\n" +
				"    for i in ids:\n" +
				"        self.env['x'].search([('id', '=', i)])  # audit-ignore-search\n",
		},
		{
			name: "nested function resets loop depth",
			src: "def f(self, ids):\n" +
				"    for i in ids:\n" +
				"        def g():\n" +
				"            return self.env['x'].search([('a', '=', 1)])\n",
		},
		{
			name: "loop depth restored after loop",
			src: "def f(self, ids):\n" +
				"    for i in ids:\n" +
				"        pass\n" +
				"    return self.env['x'].search([('a', '=', 1)])\n",
		},
		{
			name: "cron without limit",
			src:  "def _cron_clean(self):\n    recs = self.env['x'].search([('a', '=', 1)])\n",
			want: []wantDiag{{m.SeverityError, 2, "Cron batching"}},
		},
		{
			name: "unbounded search",
			src:  "partners = env['res.partner'].search([])\n",
			want: []wantDiag{{m.SeverityWarning, 1, "Unbounded search([])"}},
		},
		{
			name: "len over search",
			src:  "n = len(records.search([('a', '=', 1)]))\n",
			want: []wantDiag{{m.SeverityWarning, 1, "search_count()"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDiagnostics(t, visitSource(t, "addon/models/a.py", tt.src), tt.want)
		})
	}
}

func TestVisitor_UnconditionalBypass(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []wantDiag
	}{
		{
			name: "commit",
			src:  "def f(self):\n    self.env.cr.commit()\n",
			want: []wantDiag{{m.SeverityError, 2, "cr.commit()"}},
		},
		{
			name: "commit with marker",
			src:  "def f(self):\n    self.env.cr.commit()  # burn-ignore\n",
		},
		{
			name: "tainted Markup",
			src:  "html = Markup(\"<b>%s</b>\" % name)\n",
			want: []wantDiag{{m.SeverityError, 1, "% interpolation"}},
		},
		{
			name: "constant Markup",
			src:  "html = Markup(\"<br/>\")\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDiagnostics(t, visitSource(t, "addon/models/a.py", tt.src), tt.want)
		})
	}
}

func TestVisitor_Controllers(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []wantDiag
	}{
		{
			name: "mass assignment",
			src: "@http.route('/save', type='json', auth='user')\n" +
				"def save(self, **kwargs):\n" +
				"    request.env['x'].create(kwargs)\n",
			want: []wantDiag{{m.SeverityError, 3, "Mass assignment"}},
		},
		{
			name: "mass assignment through splat",
			src: "@route('/save')\n" +
				"def save(self, **post):\n" +
				"    request.env['x'].browse(1).write(dict(**post))\n" +
				"    request.env['x'].browse(1).write(**post)\n",
			want: []wantDiag{{m.SeverityError, 4, "Mass assignment"}},
		},
		{
			name: "kwargs get",
			src: "@http.route('/save')\n" +
				"def save(self, **kw):\n" +
				"    name = kw.get('name')\n",
			want: []wantDiag{{m.SeverityWarning, 3, "kw.get()"}},
		},
		{
			name: "not a controller",
			src: "def save(self, **kwargs):\n" +
				"    self.env['x'].create(kwargs)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDiagnostics(t, visitSource(t, "addon/controllers/main.py", tt.src), tt.want)
		})
	}
}

func TestVisitor_Warnings(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []wantDiag
	}{
		{
			name: "uniqueness in constraint",
			src: "@api.constrains('code')\n" +
				"def _constrain_code(self):\n" +
				"    dup = self.search_count([('code', '=', self.code)])\n",
			want: []wantDiag{{m.SeverityWarning, 3, "active_test=False"}},
		},
		{
			name: "uniqueness with archived records",
			src: "def _check_code(self):\n" +
				"    dup = self.with_context(active_test=False).search_count([('code', '=', self.code)])\n",
		},
		{
			name: "env shortcut",
			src:  "def f(self):\n    return self._uid\n",
			want: []wantDiag{{m.SeverityWarning, 2, "self.env.uid"}},
		},
		{
			name: "requests without timeout",
			src:  "r = requests.get(url)\nr = requests.post(url, timeout=5)\n",
			want: []wantDiag{{m.SeverityWarning, 1, "timeout="}},
		},
		{
			name: "bare except",
			src:  "try:\n    x = 1\nexcept:\n    pass\ntry:\n    x = 2\nexcept Exception:\n    pass\n",
			want: []wantDiag{{m.SeverityWarning, 3, "Bare except"}},
		},
		{
			name: "sql constraints",
			src: "class A(models.Model):\n" +
				"    _sql_constraints = [('u', 'unique(code)', 'Code must be unique')]\n",
			want: []wantDiag{{m.SeverityWarning, 2, "models.Constraint"}},
		},
		{
			name: "force send",
			src:  "template.send_mail(rec.id, force_send=True)\n",
			want: []wantDiag{{m.SeverityWarning, 1, "force_send"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDiagnostics(t, visitSource(t, "addon/models/a.py", tt.src), tt.want)
		})
	}
}

func TestVisitor_Translations(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want int
	}{
		{name: "plain exception literal", src: "raise UserError(\"Something went wrong\")\n", want: 1},
		{name: "translated exception", src: "raise UserError(_(\"Something went wrong\"))\n"},
		{name: "interpolated literal", src: "raise UserError(\"Error: %s\" % e)\n", want: 1},
		{name: "translated interpolation", src: "raise UserError(_(\"Error: %s\") % e)\n"},
		{name: "env translation", src: "raise ValidationError(self.env._(\"Bad value here\"))\n"},
		{name: "ui dict key", src: "res = {'title': 'Missing value here'}\n", want: 1},
		{name: "ui subscript", src: "res['warning_message'] = f\"Bad {x}\"\n", want: 1},
		{name: "single word", src: "res = {'message': 'ok'}\n"},
		{name: "sql prefix", src: "raise ValidationError(\"SELECT count failed\")\n"},
		{name: "message body", src: "rec.message_post(body=\"Order was confirmed\")\n", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := visitSource(t, "addon/models/a.py", tt.src)
			require.Len(t, got, tt.want, "diagnostics: %+v", got)

			for _, d := range got {
				assert.Equal(t, m.SeverityWarning, d.Severity)
				assert.Equal(t, m.CategoryI18n, d.Category)
			}
		})
	}
}

func TestVisitor_AuditMarkerOnlySuppressesItsCategory(t *testing.T) {
	src := "def f(self, ids):\n" +
		"    for i in ids:\n" +
		"        self.env['x'].search([('id', '=', i)])  # audit-ignore-cron\n"

	got := visitSource(t, "addon/models/a.py", src)

	require.Len(t, got, 1)
	assert.Equal(t, m.CategorySearch, got[0].Category)
}
